package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledlayers/api"
	"github.com/matt-g-everett/ledlayers/effect"
	"github.com/matt-g-everett/ledlayers/model"
	"github.com/matt-g-everett/ledlayers/render"
	"github.com/matt-g-everett/ledlayers/stream"
	logxi "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
)

var logger = logxi.New("ledlayers")

// mqttLogger routes the MQTT client's error output through logxi.
type mqttLogger struct {
	l logxi.Logger
}

func (m mqttLogger) Println(v ...interface{}) {
	m.l.Error(fmt.Sprint(v...))
}

func (m mqttLogger) Printf(format string, v ...interface{}) {
	m.l.Error(fmt.Sprintf(format, v...))
}

type app struct {
	Config   stream.Config
	Client   mqtt.Client
	Renderer *render.Renderer
	Remote   *stream.Remote
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	logger.Info("connected", "broker", a.Config.Mqtt.URL)
	if err := a.Remote.Subscribe(); err != nil {
		logger.Error("subscribe failed", "err", err)
	}
}

func (a *app) readConfig(configPath string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return errors.Wrap(err, "opening config")
	}
	defer f.Close()

	a.Config, err = stream.ReadConfig(f)
	return err
}

func (a *app) connect() error {
	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("ledlayers").
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(options)
	a.Remote = stream.NewRemote(a.Config, a.Client, a.Renderer, logxi.New("remote"))

	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "connecting to broker")
	}
	return nil
}

func (a *app) run(preview bool) error {
	errorLog, err := effect.OpenErrorLog(a.Config.Render.ErrorLog)
	if err != nil {
		return err
	}
	defer errorLog.Close()

	guard := effect.NewGuard(errorLog, logxi.New("guard"))
	a.Renderer, err = a.Config.BuildRenderer(guard, logxi.New("render"))
	if err != nil {
		return err
	}

	m, err := model.New(a.Config.Render.LEDs)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if a.Config.Mqtt.URL != "" {
		if err := a.connect(); err != nil {
			return err
		}
		defer a.Client.Disconnect(250)
	}

	advancer := stream.NewAdvancer(a.Renderer, a.Config.Render.SwitchInterval, a.Config.Render.FadeTime,
		logxi.New("advancer"))
	go advancer.Run(ctx)

	if addr := a.Config.HTTP.Listen; addr != "" {
		server := api.NewApi(a.Renderer, a.Config.Render.FadeTime, logxi.New("api"))
		go func() {
			if err := server.Serve(addr); err != nil {
				logger.Error("api stopped", "err", err)
			}
		}()
	}

	var sink stream.Sink = stream.NullSink{}
	if preview || a.Config.Render.Preview {
		terminal, err := stream.NewTerminalSink()
		if err != nil {
			return err
		}
		defer terminal.Close()
		sink = terminal
	}

	params := effect.NewParams()
	params.TargetFrameRate = a.Config.Render.FrameRate
	controller := stream.NewController(m, a.Renderer, params, sink, logxi.New("stream"))
	if err := controller.Run(ctx); err != nil && errors.Cause(err) != context.Canceled {
		return err
	}
	return nil
}

func main() {
	mqtt.ERROR = mqttLogger{l: logxi.New("mqtt")}

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	preview := flag.Bool("preview", false, "Preview frames in the terminal.")
	flag.Parse()

	// Read the config
	a := newApp()
	if err := a.readConfig(*configPath); err != nil {
		logger.Fatal("reading config", "err", err)
	}
	logger.Info("config", "leds", a.Config.Render.LEDs, "playlists", len(a.Config.Playlists),
		"active", a.Config.Active)

	if err := a.run(*preview); err != nil {
		logger.Fatal("stopped", "err", err)
	}
}
