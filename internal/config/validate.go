package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"abc-audio/internal/logging"
)

// Normalize validates cfg and returns a canonical copy.
func Normalize(cfg Config) (Config, error) {
	cfg.Device.Backend = strings.ToLower(strings.TrimSpace(cfg.Device.Backend))
	switch cfg.Device.Backend {
	case BackendOto, BackendNoop:
	default:
		return cfg, fmt.Errorf("device.backend must be %q or %q, got %q", BackendOto, BackendNoop, cfg.Device.Backend)
	}
	if cfg.Device.SampleRate < 8000 || cfg.Device.SampleRate > 192000 {
		return cfg, fmt.Errorf("device.sample_rate must be between 8000 and 192000")
	}
	if cfg.Device.ChannelCount < 1 || cfg.Device.ChannelCount > 2 {
		return cfg, fmt.Errorf("device.channel_count must be 1 or 2")
	}

	cfg.Speech.Backend = strings.ToLower(strings.TrimSpace(cfg.Speech.Backend))
	switch cfg.Speech.Backend {
	case SpeechExec, SpeechNone:
	default:
		return cfg, fmt.Errorf("speech.backend must be %q or %q, got %q", SpeechExec, SpeechNone, cfg.Speech.Backend)
	}
	if cfg.Speech.Rate < 0.1 || cfg.Speech.Rate > 10 {
		return cfg, fmt.Errorf("speech.rate must be between 0.1 and 10")
	}
	if cfg.Speech.Pitch < 0 || cfg.Speech.Pitch > 2 {
		return cfg, fmt.Errorf("speech.pitch must be between 0 and 2")
	}
	if cfg.Speech.Volume < 0 || cfg.Speech.Volume > 1 {
		return cfg, fmt.Errorf("speech.volume must be between 0 and 1")
	}
	tag, err := language.Parse(cfg.Speech.Locale)
	if err != nil {
		return cfg, fmt.Errorf("speech.locale %q: %w", cfg.Speech.Locale, err)
	}
	cfg.Speech.Locale = tag.String()

	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if _, _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("log_level: %w", err)
	}
	if cfg.PreferencesPath == "" {
		cfg.PreferencesPath = DefaultPreferencesPath()
	}
	if cfg.Web.Addr == "" {
		return cfg, fmt.Errorf("web.addr is required")
	}
	return cfg, nil
}
