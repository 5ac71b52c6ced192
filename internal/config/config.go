package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"abc-audio/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. ABC_AUDIO_DEVICE_BACKEND=noop.
const EnvPrefix = "ABC_AUDIO"

// Device backends.
const (
	BackendOto  = "oto"
	BackendNoop = "noop"
)

// Speech backends.
const (
	SpeechExec = "exec"
	SpeechNone = "none"
)

// DeviceConfig selects and tunes the audio output.
type DeviceConfig struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`
	SampleRate   int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	ChannelCount int    `mapstructure:"channel_count" yaml:"channel_count"`
}

// SpeechConfig selects the announcement backend and its utterance defaults.
type SpeechConfig struct {
	Backend string  `mapstructure:"backend" yaml:"backend"`
	Command string  `mapstructure:"command" yaml:"command"` // empty = autodetect
	Locale  string  `mapstructure:"locale" yaml:"locale"`
	Rate    float64 `mapstructure:"rate" yaml:"rate"`
	Pitch   float64 `mapstructure:"pitch" yaml:"pitch"`
	Volume  float64 `mapstructure:"volume" yaml:"volume"`
}

// WebConfig configures the HTTP host.
type WebConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Config is the application configuration.
type Config struct {
	PreferencesPath string       `mapstructure:"preferences_path" yaml:"preferences_path"`
	LogLevel        string       `mapstructure:"log_level" yaml:"log_level"`
	Device          DeviceConfig `mapstructure:"device" yaml:"device"`
	Speech          SpeechConfig `mapstructure:"speech" yaml:"speech"`
	Web             WebConfig    `mapstructure:"web" yaml:"web"`
}

// Utterance returns the announcement defaults.
func (c Config) Utterance() domain.UtteranceConfig {
	return domain.UtteranceConfig{
		Rate:   c.Speech.Rate,
		Pitch:  c.Speech.Pitch,
		Volume: c.Speech.Volume,
		Locale: c.Speech.Locale,
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	u := domain.DefaultUtteranceConfig()
	return Config{
		PreferencesPath: DefaultPreferencesPath(),
		LogLevel:        "warn",
		Device: DeviceConfig{
			Backend:      BackendOto,
			SampleRate:   44100,
			ChannelCount: 2,
		},
		Speech: SpeechConfig{
			Backend: SpeechExec,
			Locale:  u.Locale,
			Rate:    u.Rate,
			Pitch:   u.Pitch,
			Volume:  u.Volume,
		},
		Web: WebConfig{Addr: "127.0.0.1:7071"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("preferences_path", d.PreferencesPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("device.backend", d.Device.Backend)
	v.SetDefault("device.sample_rate", d.Device.SampleRate)
	v.SetDefault("device.channel_count", d.Device.ChannelCount)
	v.SetDefault("speech.backend", d.Speech.Backend)
	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.locale", d.Speech.Locale)
	v.SetDefault("speech.rate", d.Speech.Rate)
	v.SetDefault("speech.pitch", d.Speech.Pitch)
	v.SetDefault("speech.volume", d.Speech.Volume)
	v.SetDefault("web.addr", d.Web.Addr)
}

// Load reads path (a missing file is fine), applies ABC_AUDIO_* overrides and validates.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return Normalize(cfg)
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# abc-audio configuration
# Every key can be overridden with an ABC_AUDIO_ environment variable,
# e.g. ABC_AUDIO_DEVICE_BACKEND=noop

# Where the music/sfx/voice toggles are stored
# preferences_path: ~/.config/abc-audio/preferences.json

# error | warn | info | debug | trace
log_level: warn

device:
  backend: oto          # oto | noop
  sample_rate: 44100
  channel_count: 2

speech:
  backend: exec         # exec | none
  command: ""           # espeak-ng, espeak or say; empty picks the first found
  locale: en-US
  rate: 0.9
  pitch: 1.1
  volume: 1.0

web:
  addr: 127.0.0.1:7071
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
