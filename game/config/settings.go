package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/wricardo/wordsearch-translate/game/group"
	"github.com/wricardo/wordsearch-translate/game/source"
)

// Duration is a time.Duration written as a Go duration string in TOML
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Settings are the user-level options of the game
type Settings struct {
	RemoteURL          string                `toml:"remote_url"`
	FallbackSource     string                `toml:"fallback_source"`
	IterationMethod    group.IterationMethod `toml:"iteration_method"`
	FetchTimeout       Duration              `toml:"fetch_timeout"`
	RemoteMinInterval  Duration              `toml:"remote_min_interval"`
	DisplayTranslation bool                  `toml:"display_translation"`
	SessionMaxAge      Duration              `toml:"session_max_age"`
}

// DefaultSettings returns random iteration, hidden translations and a 5s remote wait
func DefaultSettings() Settings {
	return Settings{
		FallbackSource:    DefaultSourceName,
		IterationMethod:   group.Random,
		FetchTimeout:      Duration{source.DefaultTimeout},
		RemoteMinInterval: Duration{30 * time.Second},
		SessionMaxAge:     Duration{24 * time.Hour},
	}
}

// LoadSettings reads path over the defaults. An empty path or a missing file
// yields the defaults; unknown keys are an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// SaveSettings writes s to path as TOML
func SaveSettings(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate rejects negative durations and a missing fallback source
func (s Settings) Validate() error {
	if s.FallbackSource == "" {
		return errors.New("settings: fallback_source must not be empty")
	}
	if s.FetchTimeout.Duration < 0 || s.RemoteMinInterval.Duration < 0 || s.SessionMaxAge.Duration < 0 {
		return errors.New("settings: durations must not be negative")
	}
	return nil
}

// SourceConfig converts the acquisition settings for source.NewAcquirer
func (s Settings) SourceConfig() source.Config {
	return source.Config{
		RemoteURL:      s.RemoteURL,
		FallbackSource: s.FallbackSource,
		Timeout:        s.FetchTimeout.Duration,
		MinInterval:    s.RemoteMinInterval.Duration,
	}
}
