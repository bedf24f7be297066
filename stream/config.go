package stream

import (
	"io"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledlayers/effect"
	"github.com/matt-g-everett/ledlayers/playlist"
	"github.com/matt-g-everett/ledlayers/render"
	logxi "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ErrUnknownLayer is returned for a layer type the factory does not know.
var ErrUnknownLayer = errors.New("unknown layer type")

// Config is the YAML configuration of the renderer and its control surfaces.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   struct {
			Control string `yaml:"control"`
			Status  string `yaml:"status"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	HTTP struct {
		Listen string `yaml:"listen"`
	} `yaml:"http"`
	Render    RenderConfig               `yaml:"render"`
	Active    string                     `yaml:"active"`
	Playlists map[string][][]LayerConfig `yaml:"playlists"`
}

// RenderConfig holds the frame loop and transition settings.
type RenderConfig struct {
	LEDs           int     `yaml:"leds"`
	FrameRate      float64 `yaml:"frameRate"`
	Gamma          float64 `yaml:"gamma"`
	FastFades      bool    `yaml:"fastFades"`
	FadeTime       float64 `yaml:"fadeTime"`
	SwitchInterval float64 `yaml:"switchInterval"`
	ErrorLog       string  `yaml:"errorLog"`
	Preview        bool    `yaml:"preview"`
}

// LayerConfig describes one layer of a routine.
type LayerConfig struct {
	Type      string        `yaml:"type"`
	FadeTime  float64       `yaml:"fadeTime"`
	MaxErrors int           `yaml:"maxErrors"`
	Layers    []LayerConfig `yaml:"layers"`

	Chance  int32    `yaml:"chance"`
	Colour  string   `yaml:"colour"`
	Colours []string `yaml:"colours"`
	Length  int      `yaml:"length"`
	Speed   float64  `yaml:"speed"`
	Stretch bool     `yaml:"stretch"`
}

// ReadConfig decodes a YAML config and fills in defaults.
func ReadConfig(r io.Reader) (Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return c, errors.Wrap(err, "decoding config")
	}
	c.SetDefaults()
	return c, nil
}

// SetDefaults fills unset render settings.
func (c *Config) SetDefaults() {
	if c.Render.LEDs == 0 {
		c.Render.LEDs = 40
	}
	if c.Render.FrameRate == 0 {
		c.Render.FrameRate = effect.DefaultFrameRate
	}
	if c.Render.Gamma == 0 {
		c.Render.Gamma = render.DefaultGamma
	}
	if c.Render.FadeTime == 0 {
		c.Render.FadeTime = 1
	}
	if c.Render.SwitchInterval == 0 {
		c.Render.SwitchInterval = 10
	}
	if c.Render.ErrorLog == "" {
		c.Render.ErrorLog = "error.log"
	}
}

// Build creates a fresh layer instance.
func (s LayerConfig) Build() (effect.Layer, error) {
	var layer effect.Layer
	switch s.Type {
	case "blinky":
		layer = effect.NewBlinky()
	case "colorBlinky":
		layer = effect.NewColorBlinky()
	case "snowstorm":
		layer = effect.NewSnowstorm()
	case "whiteOut":
		layer = effect.NewWhiteOut()
	case "gradientTrail":
		length := s.Length
		if length == 0 {
			length = 180
		}
		layer = effect.NewGradientTrail(effect.Rainbow, length, s.Speed)
	case "twinkle":
		colour, err := s.colour()
		if err != nil {
			return nil, err
		}
		chance := s.Chance
		if chance == 0 {
			chance = 400
		}
		length := s.Length
		if length == 0 {
			length = 24
		}
		layer = effect.NewTwinkle(chance, colour, length)
	case "streak":
		colour, err := s.colour()
		if err != nil {
			return nil, err
		}
		chance := s.Chance
		if chance == 0 {
			chance = 30
		}
		speed := s.Speed
		if speed == 0 {
			speed = 8
		}
		layer = effect.NewStreak(chance, colour, speed)
	case "stripes":
		palette, err := s.palette()
		if err != nil {
			return nil, err
		}
		length := int32(s.Length)
		if length == 0 {
			length = 150
		}
		layer = effect.NewStripes(effect.NewStripeGenerator(palette, length, length+250), s.Speed, s.Stretch)
	case "multiplier":
		if len(s.Layers) != 2 {
			return nil, errors.Errorf("multiplier needs exactly 2 layers, got %d", len(s.Layers))
		}
		first, err := s.Layers[0].Build()
		if err != nil {
			return nil, err
		}
		second, err := s.Layers[1].Build()
		if err != nil {
			return nil, err
		}
		layer = effect.NewMultiplier(first, second)
	default:
		return nil, errors.Wrapf(ErrUnknownLayer, "%q", s.Type)
	}

	traits := layer.Traits()
	if s.FadeTime > 0 {
		traits.TransitionFadeTime = s.FadeTime
	}
	if s.MaxErrors > 0 {
		traits.MaximumErrors = s.MaxErrors
	}
	return layer, nil
}

func (s LayerConfig) colour() (colorful.Color, error) {
	if s.Colour == "" {
		return colorful.Hex("#404040")
	}
	c, err := colorful.Hex(s.Colour)
	if err != nil {
		return c, errors.Wrapf(err, "layer colour %q", s.Colour)
	}
	return c, nil
}

func (s LayerConfig) palette() ([]colorful.Color, error) {
	var palette []colorful.Color
	for _, hex := range s.Colours {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, errors.Wrapf(err, "palette colour %q", hex)
		}
		palette = append(palette, c)
	}
	return palette, nil
}

// BuildPlaylists creates every configured playlist.
func (c Config) BuildPlaylists() (map[string]*playlist.Playlist, error) {
	names := make([]string, 0, len(c.Playlists))
	for name := range c.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)

	playlists := make(map[string]*playlist.Playlist, len(names))
	for _, name := range names {
		configs := c.Playlists[name]
		routines := make([]effect.Routine, 0, len(configs))
		for i, layers := range configs {
			routine := make(effect.Routine, 0, len(layers))
			for _, lc := range layers {
				layer, err := lc.Build()
				if err != nil {
					return nil, errors.Wrapf(err, "playlist %q routine %d", name, i)
				}
				routine = append(routine, layer)
			}
			routines = append(routines, routine)
		}

		p, err := playlist.New(routines...)
		if err != nil {
			return nil, errors.Wrapf(err, "playlist %q", name)
		}
		playlists[name] = p
	}
	return playlists, nil
}

// BuildRenderer creates the configured playlists and a Renderer over them.
func (c Config) BuildRenderer(guard *effect.Guard, logger logxi.Logger) (*render.Renderer, error) {
	playlists, err := c.BuildPlaylists()
	if err != nil {
		return nil, err
	}
	return render.New(playlists,
		render.WithActive(c.Active),
		render.WithFastFades(c.Render.FastFades),
		render.WithGamma(c.Render.Gamma),
		render.WithGuard(guard),
		render.WithLogger(logger),
	)
}
