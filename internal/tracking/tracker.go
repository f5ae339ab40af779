// Package tracking turns raw hand landmarks into tracking feed samples.
package tracking

import (
	"time"

	"github.com/ayusman/airsketch/internal/detector"
	"github.com/ayusman/airsketch/internal/feed"
)

// Config holds the cursor smoothing and mode classification settings.
type Config struct {
	// Margin is the fraction of the frame on each side that maps past the
	// board edge.
	Margin float64 `toml:"margin"`

	// PinchDistance is the thumb to index tip distance, in frame pixels,
	// below which the hand reads as selection.
	PinchDistance float64 `toml:"pinch_distance"`

	// ModeWindow is the number of recent classifications the mode is
	// stabilized over.
	ModeWindow int `toml:"mode_window"`

	MinCutoff float64 `toml:"min_cutoff"`
	Beta      float64 `toml:"beta"`
	DCutoff   float64 `toml:"d_cutoff"`
}

// DefaultConfig returns the settings the tracker ships with.
func DefaultConfig() Config {
	return Config{
		Margin:        0.15,
		PinchDistance: 65,
		ModeWindow:    5,
		MinCutoff:     0.05,
		Beta:          0.5,
		DCutoff:       1.0,
	}
}

// Tracker keeps per-hand smoothing state between frames. It is not safe for
// concurrent use; one capture loop owns it.
type Tracker struct {
	cfg  Config
	fx   *OneEuroFilter
	fy   *OneEuroFilter
	mode *ModeStabilizer
}

// New creates a Tracker. Zero or negative fields in cfg fall back to
// DefaultConfig, except Beta: zero turns off speed adaptation, so only a
// negative Beta is replaced. Start from DefaultConfig to keep its Beta.
func New(cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	if cfg.PinchDistance <= 0 {
		cfg.PinchDistance = def.PinchDistance
	}
	if cfg.ModeWindow <= 0 {
		cfg.ModeWindow = def.ModeWindow
	}
	if cfg.MinCutoff <= 0 {
		cfg.MinCutoff = def.MinCutoff
	}
	if cfg.Beta < 0 {
		cfg.Beta = def.Beta
	}
	if cfg.DCutoff <= 0 {
		cfg.DCutoff = def.DCutoff
	}

	return &Tracker{
		cfg:  cfg,
		fx:   NewOneEuroFilter(cfg.MinCutoff, cfg.Beta, cfg.DCutoff),
		fy:   NewOneEuroFilter(cfg.MinCutoff, cfg.Beta, cfg.DCutoff),
		mode: NewModeStabilizer(cfg.ModeWindow),
	}
}

// Config returns the effective configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Process converts one frame's detections into a feed sample. Only the first
// hand is tracked; the index fingertip drives the cursor. A frame without a
// hand resets smoothing and mode history.
func (t *Tracker) Process(hands []detector.HandLandmarks, frameW, frameH int, now time.Time) feed.Sample {
	if len(hands) == 0 {
		t.Reset()
		return feed.Undetected()
	}
	hand := &hands[0]

	landmarks := make([]feed.Landmark, detector.NumLandmarks)
	for i, p := range hand.Points {
		landmarks[i] = feed.Landmark{ID: i, X: p.X, Y: p.Y}
	}

	tip := hand.Points[detector.IndexTip]
	cursor := &feed.Cursor{
		X: t.fx.Filter(now, Remap(tip.X, t.cfg.Margin)),
		Y: t.fy.Filter(now, Remap(tip.Y, t.cfg.Margin)),
	}

	mode := t.mode.Push(Classify(hand, frameW, frameH, t.cfg.PinchDistance))

	return feed.Sample{
		Detected:  true,
		Mode:      mode,
		Cursor:    cursor,
		Landmarks: landmarks,
	}
}

// Reset clears smoothing and mode history.
func (t *Tracker) Reset() {
	t.fx.Reset()
	t.fy.Reset()
	t.mode.Reset()
}
