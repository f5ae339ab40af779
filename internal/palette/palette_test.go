package palette

import (
	"testing"

	"github.com/ayusman/airsketch/internal/canvas"
	"github.com/ayusman/airsketch/internal/geom"
)

func TestRect_Contains(t *testing.T) {
	r := Rect{Left: 10, Top: 10, Right: 50, Bottom: 50}

	tests := []struct {
		name string
		p    geom.Point
		want bool
	}{
		{"inside", geom.Point{X: 30, Y: 30}, true},
		{"top-left corner", geom.Point{X: 10, Y: 10}, true},
		{"bottom-right corner", geom.Point{X: 50, Y: 50}, true},
		{"left of box", geom.Point{X: 9.9, Y: 30}, false},
		{"below box", geom.Point{X: 30, Y: 50.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPalette_CheckHover(t *testing.T) {
	red := canvas.Color("#ff0000")
	green := canvas.Color("#00ff00")
	blue := canvas.Color("#0000ff")

	t.Run("selects hovered swatch", func(t *testing.T) {
		p := New([]Entry{
			{Color: red, Box: Rect{Left: 0, Top: 0, Right: 40, Bottom: 40}},
			{Color: green, Box: Rect{Left: 50, Top: 0, Right: 90, Bottom: 40}},
		})

		c, idx, changed := p.CheckHover(geom.Point{X: 60, Y: 20}, blue)
		if !changed || c != green || idx != 1 {
			t.Errorf("CheckHover() = %s, %d, %v; want %s, 1, true", c, idx, changed, green)
		}
	})

	t.Run("no change when hovering the active color", func(t *testing.T) {
		p := New([]Entry{{Color: red, Box: Rect{Right: 40, Bottom: 40}}})

		c, idx, changed := p.CheckHover(geom.Point{X: 20, Y: 20}, red)
		if changed || c != red || idx != -1 {
			t.Errorf("CheckHover() = %s, %d, %v; want no change", c, idx, changed)
		}
	})

	t.Run("no change outside every swatch", func(t *testing.T) {
		p := New(DefaultEntries())

		c, _, changed := p.CheckHover(geom.Point{X: 500, Y: 500}, blue)
		if changed || c != blue {
			t.Errorf("expected active color to stay %s, got %s", blue, c)
		}
	})

	t.Run("last overlapping swatch wins", func(t *testing.T) {
		p := New([]Entry{
			{Color: red, Box: Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}},
			{Color: green, Box: Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}},
		})

		c, idx, changed := p.CheckHover(geom.Point{X: 50, Y: 50}, blue)
		if !changed || c != green || idx != 1 {
			t.Errorf("CheckHover() = %s, %d, %v; want %s, 1, true", c, idx, changed, green)
		}
	})
}

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries()
	if len(entries) != len(DefaultColors) {
		t.Fatalf("expected %d entries, got %d", len(DefaultColors), len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Box.Left <= entries[i-1].Box.Right {
			t.Errorf("swatch %d overlaps swatch %d", i, i-1)
		}
	}

	p := New(entries)
	if p.IndexOf(canvas.DefaultColor) != 0 {
		t.Error("expected default color to be the first swatch")
	}
	if p.IndexOf("#123456") != -1 {
		t.Error("expected -1 for unknown color")
	}
}
