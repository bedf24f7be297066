package stream

import (
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	logxi "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
)

// ErrUnknownCommand is returned for a command type Dispatch does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a remote request to change what is on display.
type Command struct {
	Type         string  `json:"type"`
	Playlist     string  `json:"playlist,omitempty"`
	Intermediate string  `json:"intermediate,omitempty"`
	Advance      *bool   `json:"advance,omitempty"`
	FadeTime     float64 `json:"fadeTime,omitempty"`
}

// Dispatch applies cmd to s. A zero fade time falls back to defaultFade. Swaps advance the
// outgoing playlist unless the command says otherwise.
func Dispatch(s Switcher, cmd Command, defaultFade float64) error {
	fadeTime := cmd.FadeTime
	if fadeTime <= 0 {
		fadeTime = defaultFade
	}

	switch cmd.Type {
	case "advance":
		return s.AdvanceCurrentPlaylist(fadeTime)
	case "swap":
		advance := true
		if cmd.Advance != nil {
			advance = *cmd.Advance
		}
		return s.SwapPlaylists(cmd.Playlist, cmd.Intermediate, advance, fadeTime)
	default:
		return errors.Wrapf(ErrUnknownCommand, "%q", cmd.Type)
	}
}

// Remote takes commands from an MQTT topic and publishes the resulting status.
type Remote struct {
	config   Config
	client   mqtt.Client
	switcher Switcher
	logger   logxi.Logger
}

// NewRemote creates a Remote for the topics in config.
func NewRemote(config Config, client mqtt.Client, switcher Switcher, logger logxi.Logger) *Remote {
	r := new(Remote)
	r.config = config
	r.client = client
	r.switcher = switcher
	r.logger = logger
	if r.logger == nil {
		r.logger = logxi.New("remote")
	}
	return r
}

func (r *Remote) handleMessage(client mqtt.Client, msg mqtt.Message) {
	r.logger.Debug("received message", "id", msg.MessageID(), "topic", msg.Topic())

	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		r.logger.Warn("bad command", "topic", msg.Topic(), "err", err)
		return
	}
	if err := Dispatch(r.switcher, cmd, r.config.Render.FadeTime); err != nil {
		r.logger.Warn("command failed", "type", cmd.Type, "err", err)
		return
	}
	r.publishStatus()
}

func (r *Remote) publishStatus() {
	topic := r.config.Mqtt.Topics.Status
	if topic == "" {
		return
	}
	b, err := json.Marshal(r.switcher.Status())
	if err != nil {
		r.logger.Warn("encoding status", "err", err)
		return
	}
	token := r.client.Publish(topic, 0, true, b)
	token.Wait()
	if err := token.Error(); err != nil {
		r.logger.Warn("publishing status", "topic", topic, "err", err)
	}
}

// Subscribe listens on the control topic.
func (r *Remote) Subscribe() error {
	topic := r.config.Mqtt.Topics.Control
	if topic == "" {
		return nil
	}
	if token := r.client.Subscribe(topic, 0, r.handleMessage); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribing to %s", topic)
	}
	r.logger.Info("subscribed", "topic", topic)
	return nil
}
