// Package board interprets the tracking feed, one sample at a time, into
// drawing operations on the stroke store.
package board

import (
	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/feed"
	"github.com/ayusman/airsketch/internal/geom"
	"github.com/ayusman/airsketch/internal/palette"
)

// Default surface size until a presentation client reports its own.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Surface is the size of the drawing surface in pixels.
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Denormalize maps a normalized position onto the surface.
func (s Surface) Denormalize(x, y float64) geom.Point {
	return geom.Point{X: x * s.Width, Y: y * s.Height}
}

// State is the interaction state carried from one sample to the next.
// Current and Grabbed are stroke IDs; at most one of them is set.
type State struct {
	Current     string       `json:"current,omitempty"`
	Grabbed     string       `json:"grabbed,omitempty"`
	GrabOffset  geom.Point   `json:"grab_offset"`
	ActiveColor canvas.Color `json:"active_color"`
	Mode        feed.Mode    `json:"mode"`
}

// NewState returns the state before any sample has been seen.
func NewState() State {
	return State{
		ActiveColor: canvas.DefaultColor,
		Mode:        feed.ModeNavigation,
	}
}

// Cursor is the on-screen cursor marker.
type Cursor struct {
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Border   canvas.Color `json:"border"`
	Grabbing bool         `json:"grabbing"`
	Mode     feed.Mode    `json:"mode"`
}

// Joint is one landmark placed on the surface.
type Joint struct {
	ID int `json:"id"`
	geom.Point
}

// Skeleton is the hand overlay. Both slices are empty when it is hidden.
type Skeleton struct {
	Joints []Joint        `json:"joints"`
	Paths  [][]geom.Point `json:"paths"`
}

// Bones lists the landmark index chains drawn as connected segments.
var Bones = [][]int{
	{0, 1, 2, 3, 4},
	{0, 5, 6, 7, 8},
	{0, 17, 18, 19, 20},
	{5, 9, 13, 17},
	{9, 10, 11, 12},
	{13, 14, 15, 16},
}

// Effects describes what the presentation layer should change after a sample.
// Highlight is the palette index to highlight, or -1.
type Effects struct {
	Detected  bool     `json:"detected"`
	Skipped   bool     `json:"skipped,omitempty"`
	ModeLabel string   `json:"mode_label,omitempty"`
	Cursor    *Cursor  `json:"cursor,omitempty"`
	Skeleton  Skeleton `json:"skeleton"`
	Highlight int      `json:"highlight"`
	Redraw    bool     `json:"redraw"`
	Erased    int      `json:"erased,omitempty"`
}

// Frame is a complete render update for presentation clients.
type Frame struct {
	Effects
	Strokes     []canvas.Stroke `json:"strokes"`
	Grabbed     string          `json:"grabbed,omitempty"`
	ActiveColor canvas.Color    `json:"active_color"`
	LineWidth   float64         `json:"line_width"`
	Surface     Surface         `json:"surface"`
	Palette     []palette.Entry `json:"palette"`
}
