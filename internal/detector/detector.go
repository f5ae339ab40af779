package detector

import "gocv.io/x/gocv"

// Detector finds hands in a camera frame.
type Detector interface {
	// Detect returns the hands found in frame, or none. Points are
	// normalized to the frame with the origin at the top left.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds the hand landmarker settings passed to MediaPipe.
type Config struct {
	// MaxHands caps how many hands are reported. Only the first one drives
	// the cursor, so looking for more only costs time.
	MaxHands int `toml:"max_hands"`

	// MinConfidence is the detection score a hand needs to be reported.
	MinConfidence float64 `toml:"min_confidence"`

	// MinTrackingConf is the landmark tracking score below which MediaPipe
	// runs full detection again on the next frame.
	MinTrackingConf float64 `toml:"min_tracking_confidence"`
}

// DefaultConfig returns a Config for one drawing hand. The 0.8 thresholds
// keep a half-visible hand from flickering in and out of drawing mode.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.8,
		MinTrackingConf: 0.8,
	}
}

// withDefaults fills unset or out of range fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxHands <= 0 {
		c.MaxHands = def.MaxHands
	}
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		c.MinConfidence = def.MinConfidence
	}
	if c.MinTrackingConf <= 0 || c.MinTrackingConf > 1 {
		c.MinTrackingConf = def.MinTrackingConf
	}
	return c
}
