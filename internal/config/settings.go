package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. DOA_RADAR_LOG_LEVEL.
const EnvPrefix = "DOA_RADAR"

// Sources accepted for Settings.Source.
const (
	SourceDemo   = "demo"
	SourceReplay = "replay"
	SourceBLE    = "ble"
)

// Settings is the effective runtime configuration.
type Settings struct {
	Source string            `mapstructure:"source" yaml:"source" validate:"oneof=demo replay ble"`
	Colors map[string]string `mapstructure:"colors" yaml:"colors,omitempty" validate:"dive,keys,required,endkeys,hexcolor"`

	Radar  RadarSettings  `mapstructure:"radar" yaml:"radar"`
	Feed   FeedSettings   `mapstructure:"feed" yaml:"feed"`
	Replay ReplaySettings `mapstructure:"replay" yaml:"replay"`
	BLE    BLESettings    `mapstructure:"ble" yaml:"ble"`
	Log    LogSettings    `mapstructure:"log" yaml:"log"`
}

// RadarSettings tunes the display engine.
type RadarSettings struct {
	MinDistance    float64       `mapstructure:"min_distance" yaml:"min_distance" validate:"gt=0"`
	MaxDistance    float64       `mapstructure:"max_distance" yaml:"max_distance" validate:"gtfield=MinDistance"`
	FPS            int           `mapstructure:"fps" yaml:"fps" validate:"gte=1,lte=120"`
	PauseRedraw    time.Duration `mapstructure:"pause_redraw" yaml:"pause_redraw" validate:"gt=0"`
	SettleDelay    time.Duration `mapstructure:"settle_delay" yaml:"settle_delay" validate:"gte=0"`
	TrailWidth     float64       `mapstructure:"trail_width" yaml:"trail_width" validate:"gt=0"`
	Ripples        bool          `mapstructure:"ripples" yaml:"ripples"`
	RippleInterval time.Duration `mapstructure:"ripple_interval" yaml:"ripple_interval" validate:"gt=0"`
	RippleMax      int           `mapstructure:"ripple_max" yaml:"ripple_max" validate:"gte=1,lte=10"`
	StartPaused    bool          `mapstructure:"start_paused" yaml:"start_paused"`
}

// FeedSettings applies to every point source.
type FeedSettings struct {
	TrackTimeout time.Duration `mapstructure:"track_timeout" yaml:"track_timeout" validate:"gt=0"`
	Smoothing    float64       `mapstructure:"smoothing" yaml:"smoothing" validate:"gt=0,lte=1"`
}

// ReplaySettings configures the JSONL track log replay.
type ReplaySettings struct {
	Path           string  `mapstructure:"path" yaml:"path"`
	Speed          float64 `mapstructure:"speed" yaml:"speed" validate:"gt=0"`
	Loop           bool    `mapstructure:"loop" yaml:"loop"`
	MinConfidence  float64 `mapstructure:"min_confidence" yaml:"min_confidence" validate:"gte=0,lte=1"`
	MergeWithinDeg float64 `mapstructure:"merge_within_deg" yaml:"merge_within_deg" validate:"gte=0,lte=180"`
}

// BLESettings configures the live Bluetooth scan.
type BLESettings struct {
	MeasuredPower float64 `mapstructure:"measured_power" yaml:"measured_power" validate:"lt=0"`
	PathLossExp   float64 `mapstructure:"path_loss_exp" yaml:"path_loss_exp" validate:"gt=0"`
}

// LogSettings configures logrus.
type LogSettings struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"source":       "source",
	"replay":       "replay.path",
	"speed":        "replay.speed",
	"loop":         "replay.loop",
	"min-distance": "radar.min_distance",
	"max-distance": "radar.max_distance",
	"fps":          "radar.fps",
	"ripples":      "radar.ripples",
	"paused":       "radar.start_paused",
	"log-level":    "log.level",
	"log-file":     "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", SourceDemo)
	v.SetDefault("colors", map[string]string{})

	v.SetDefault("radar.min_distance", MinDistance)
	v.SetDefault("radar.max_distance", MaxDistance)
	v.SetDefault("radar.fps", TargetFPS)
	v.SetDefault("radar.pause_redraw", PauseRedrawInterval)
	v.SetDefault("radar.settle_delay", SettleDelay)
	v.SetDefault("radar.trail_width", TrailWidth)
	v.SetDefault("radar.ripples", RippleEnabled)
	v.SetDefault("radar.ripple_interval", RippleInterval)
	v.SetDefault("radar.ripple_max", RippleMax)
	v.SetDefault("radar.start_paused", false)

	v.SetDefault("feed.track_timeout", TrackTimeout)
	v.SetDefault("feed.smoothing", SmoothingAlpha)

	v.SetDefault("replay.path", "")
	v.SetDefault("replay.speed", 1.0)
	v.SetDefault("replay.loop", false)
	v.SetDefault("replay.min_confidence", MinConfidence)
	v.SetDefault("replay.merge_within_deg", MergeWithinDeg)

	v.SetDefault("ble.measured_power", MeasuredPower)
	v.SetDefault("ble.path_loss_exp", PathLossExp)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Defaults returns the built-in configuration, ignoring files,
// environment and flags.
func Defaults() Settings {
	v := viper.New()
	setDefaults(v)
	s, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults are invalid: %v", err))
	}
	return s
}

// Load builds Settings from defaults, an optional config file, the
// environment and flags, in increasing priority. An empty path searches
// the working directory and ~/.config/doa-radar for doa-radar.{yaml,json}
// and tolerates none being found.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("doa-radar")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/doa-radar")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	s.Source = strings.ToLower(strings.TrimSpace(s.Source))
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}

// Validate checks field constraints and cross-section rules.
func (s Settings) Validate() error {
	if err := validate().Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if s.Source == SourceReplay && s.Replay.Path == "" {
		return errors.New("invalid configuration: replay source requires replay.path")
	}
	return nil
}

// YAML renders the settings as a YAML document.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
