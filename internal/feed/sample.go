// Package feed defines the tracking feed wire format and the websocket client
// that consumes it.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mode is the interaction mode reported by the tracker.
type Mode string

const (
	ModeNavigation Mode = "navigation"
	ModeDrawing    Mode = "drawing"
	ModeSelection  Mode = "selection"
	ModeEraser     Mode = "eraser"
	// ModeUndetected is never sent on the wire; it marks interaction state
	// after a sample with no hand in view.
	ModeUndetected Mode = "undetected"
)

// ErrMalformed is returned when a feed message cannot be decoded.
var ErrMalformed = errors.New("malformed sample")

// Cursor is the normalized cursor position, both axes in [0,1].
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmark is one normalized hand keypoint.
type Landmark struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Sample is one tracking feed message.
// Mode, Cursor and Landmarks are only meaningful when Detected is true.
type Sample struct {
	Detected  bool       `json:"detected"`
	Mode      Mode       `json:"mode,omitempty"`
	Cursor    *Cursor    `json:"cursor,omitempty"`
	Landmarks []Landmark `json:"landmarks"`
}

// Undetected returns the sample sent when no hand is in view.
func Undetected() Sample {
	return Sample{Detected: false, Landmarks: []Landmark{}}
}

// Decode parses a single feed message.
func Decode(data []byte) (Sample, error) {
	var s Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}
