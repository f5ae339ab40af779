// Package config loads airsketch settings from an optional TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/airsketch/internal/board"
	"github.com/ayusman/airsketch/internal/capture"
	"github.com/ayusman/airsketch/internal/detector"
	"github.com/ayusman/airsketch/internal/tracking"
)

// FileName is the config file looked up in the data directory.
const FileName = "config.toml"

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("invalid config")

// Config is the full settings tree for both binaries.
type Config struct {
	Tracker TrackerConfig `toml:"tracker"`
	Board   BoardConfig   `toml:"board"`
}

// TrackerConfig configures the capture and feed side.
type TrackerConfig struct {
	Port int `toml:"port"`

	// Advertise announces the feed over mDNS.
	Advertise bool   `toml:"advertise"`
	Instance  string `toml:"instance"`

	// IdleFPS is the capture rate after IdleAfterMs without motion or hands.
	IdleFPS     int `toml:"idle_fps"`
	IdleAfterMs int `toml:"idle_after_ms"`

	Camera   capture.Config  `toml:"camera"`
	Detector detector.Config `toml:"detector"`
	Tracking tracking.Config `toml:"tracking"`
}

// BoardConfig configures the interpreter side.
type BoardConfig struct {
	Port int `toml:"port"`

	// FeedURL is the tracking feed websocket. Empty means discover it over
	// mDNS and fall back to DefaultFeedURL.
	FeedURL string `toml:"feed_url"`

	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	WebDir string `toml:"web_dir"`
	Tray   bool   `toml:"tray"`
}

// DefaultFeedURL is where the board looks for a tracker on this machine.
const DefaultFeedURL = "ws://localhost:8765/ws"

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Tracker: TrackerConfig{
			Port:        8765,
			Advertise:   true,
			IdleFPS:     5,
			IdleAfterMs: 2000,
			Camera:      capture.DefaultConfig(),
			Detector:    detector.DefaultConfig(),
			Tracking:    tracking.DefaultConfig(),
		},
		Board: BoardConfig{
			Port:   8080,
			Width:  board.DefaultWidth,
			Height: board.DefaultHeight,
			Tray:   true,
		},
	}
}

// DefaultPath returns ~/.airsketch/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".airsketch", FileName), nil
}

// Load reads path over Default. A missing file is not an error. Unknown keys
// are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Parse(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data on top of cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks ports, sizes and rates.
func (c Config) Validate() error {
	if c.Tracker.Port <= 0 || c.Tracker.Port > 65535 {
		return fmt.Errorf("%w: tracker port %d", ErrInvalid, c.Tracker.Port)
	}
	if c.Board.Port <= 0 || c.Board.Port > 65535 {
		return fmt.Errorf("%w: board port %d", ErrInvalid, c.Board.Port)
	}
	if c.Board.Width <= 0 || c.Board.Height <= 0 {
		return fmt.Errorf("%w: board size %vx%v", ErrInvalid, c.Board.Width, c.Board.Height)
	}
	if c.Tracker.IdleFPS < 0 || c.Tracker.IdleAfterMs < 0 {
		return fmt.Errorf("%w: negative idle settings", ErrInvalid)
	}
	if m := c.Tracker.Tracking.Margin; m < 0 || m >= 0.5 {
		return fmt.Errorf("%w: tracking margin %v", ErrInvalid, m)
	}
	if b := c.Tracker.Tracking.Beta; b < 0 {
		return fmt.Errorf("%w: tracking beta %v", ErrInvalid, b)
	}
	return nil
}

// Write saves cfg as TOML at path, creating the directory if needed.
func Write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
