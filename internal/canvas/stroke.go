// Package canvas holds the vector drawing content: strokes, the ordered store
// that owns them, and the proximity queries used to grab and erase them.
package canvas

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/airsketch/internal/geom"
)

// Color is a stroke color in "#rrggbb" form.
type Color string

// Fixed colors of the drawing surface.
const (
	// DefaultColor is the drawing color before any palette selection.
	DefaultColor Color = "#38bdf8"
	// GrabColor marks the cursor and the stroke while a stroke is held.
	GrabColor Color = "#fbbf24"
	// NeutralColor is the cursor border outside drawing and grabbing.
	NeutralColor Color = "#ffffff"
)

// LineWidth is the rendered stroke width in surface pixels.
const LineWidth = 5.0

// ErrInvalidColor is returned when a color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor validates a hex color and returns it normalized to lowercase "#rrggbb".
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color(c.Hex()), nil
}

// RGB returns the color components in the 0-255 range.
// Unparseable colors come back as black.
func (c Color) RGB() (r, g, b int) {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return 0, 0, 0
	}
	r8, g8, b8 := col.RGB255()
	return int(r8), int(g8), int(b8)
}

// Stroke is one continuous freehand path. Points are in draw order.
type Stroke struct {
	ID     string       `json:"id"`
	Color  Color        `json:"color"`
	Points []geom.Point `json:"points"`
}

// First returns the first point of the stroke.
func (s *Stroke) First() (geom.Point, bool) {
	if len(s.Points) == 0 {
		return geom.Point{}, false
	}
	return s.Points[0], true
}

// clone returns a deep copy so callers cannot mutate store-owned points.
func (s *Stroke) clone() Stroke {
	points := make([]geom.Point, len(s.Points))
	copy(points, s.Points)
	return Stroke{ID: s.ID, Color: s.Color, Points: points}
}
