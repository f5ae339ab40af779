// Package palette maps the cursor onto on-screen color swatches.
package palette

import (
	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/geom"
)

// Rect is a screen-space bounding box in surface pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether p lies inside the box, edges included.
func (r Rect) Contains(p geom.Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Entry is one swatch of the palette.
type Entry struct {
	ID    string       `json:"id"`
	Color canvas.Color `json:"color"`
	Box   Rect         `json:"box"`
}

// Palette is the ordered list of swatches the cursor can hover.
type Palette struct {
	entries []Entry
}

// New creates a Palette with the given entries.
func New(entries []Entry) *Palette {
	p := &Palette{}
	p.SetEntries(entries)
	return p
}

// SetEntries replaces the swatches, keeping the given order.
func (p *Palette) SetEntries(entries []Entry) {
	p.entries = append([]Entry(nil), entries...)
}

// Entries returns a copy of the swatches.
func (p *Palette) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// IndexOf returns the index of the first swatch with the given color, or -1.
func (p *Palette) IndexOf(c canvas.Color) int {
	for i, e := range p.entries {
		if e.Color == c {
			return i
		}
	}
	return -1
}

// CheckHover evaluates every swatch against the cursor. Each swatch that
// contains the cursor and whose color differs from the currently active one
// becomes the selection, so with overlapping boxes the last one wins.
func (p *Palette) CheckHover(cursor geom.Point, active canvas.Color) (canvas.Color, int, bool) {
	selected := active
	index := -1
	for i, e := range p.entries {
		if !e.Box.Contains(cursor) {
			continue
		}
		if e.Color != selected {
			selected = e.Color
			index = i
		}
	}
	return selected, index, index >= 0
}

// Swatch layout used until a presentation client reports its own.
const (
	swatchSize   = 40.0
	swatchGap    = 16.0
	swatchMargin = 20.0
)

// DefaultColors are the swatch colors seeded on first run.
var DefaultColors = []canvas.Color{
	canvas.DefaultColor,
	"#f472b6",
	"#4ade80",
	"#facc15",
	"#ffffff",
}

// DefaultEntries lays out DefaultColors in a row along the top-left of the surface.
func DefaultEntries() []Entry {
	entries := make([]Entry, len(DefaultColors))
	for i, c := range DefaultColors {
		left := swatchMargin + float64(i)*(swatchSize+swatchGap)
		entries[i] = Entry{
			Color: c,
			Box: Rect{
				Left:   left,
				Top:    swatchMargin,
				Right:  left + swatchSize,
				Bottom: swatchMargin + swatchSize,
			},
		}
	}
	return entries
}
