package canvas

import (
	"github.com/google/uuid"

	"github.com/ayusman/airsketch/internal/geom"
)

// Store is the ordered collection of strokes and the sole owner of drawing content.
// Insertion order is draw order and hit-test order.
//
// Store is not safe for concurrent use; the owning interpreter serializes access.
type Store struct {
	strokes []*Stroke
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Add creates a stroke holding a single point and appends it to the store.
func (s *Store) Add(color Color, first geom.Point) *Stroke {
	st := &Stroke{
		ID:     uuid.New().String(),
		Color:  color,
		Points: []geom.Point{first},
	}
	s.strokes = append(s.strokes, st)
	return st
}

// Get returns the stroke with the given ID.
func (s *Store) Get(id string) (*Stroke, bool) {
	if id == "" {
		return nil, false
	}
	for _, st := range s.strokes {
		if st.ID == id {
			return st, true
		}
	}
	return nil, false
}

// Append adds a point to the end of the stroke with the given ID.
// Returns false if the stroke no longer exists.
func (s *Store) Append(id string, p geom.Point) bool {
	st, ok := s.Get(id)
	if !ok {
		return false
	}
	st.Points = append(st.Points, p)
	return true
}

// Translate adds (dx, dy) to every point of the stroke.
func (s *Store) Translate(id string, dx, dy float64) bool {
	st, ok := s.Get(id)
	if !ok {
		return false
	}
	for i := range st.Points {
		st.Points[i].X += dx
		st.Points[i].Y += dy
	}
	return true
}

// MoveTo rigidly translates the stroke so that its first point lands on p.
func (s *Store) MoveTo(id string, p geom.Point) bool {
	st, ok := s.Get(id)
	if !ok {
		return false
	}
	first, ok := st.First()
	if !ok {
		return false
	}
	d := p.Sub(first)
	return s.Translate(id, d.X, d.Y)
}

// RemoveMatching removes every stroke for which pred returns true and
// reports how many were removed. Order of the survivors is preserved.
func (s *Store) RemoveMatching(pred func(*Stroke) bool) int {
	kept := s.strokes[:0]
	removed := 0
	for _, st := range s.strokes {
		if pred(st) {
			removed++
			continue
		}
		kept = append(kept, st)
	}
	for i := len(kept); i < len(s.strokes); i++ {
		s.strokes[i] = nil
	}
	s.strokes = kept
	return removed
}

// Clear removes every stroke.
func (s *Store) Clear() {
	s.strokes = nil
}

// Len returns the number of strokes.
func (s *Store) Len() int {
	return len(s.strokes)
}

// Strokes returns a deep copy of all strokes in draw order.
func (s *Store) Strokes() []Stroke {
	out := make([]Stroke, 0, len(s.strokes))
	for _, st := range s.strokes {
		out = append(out, st.clone())
	}
	return out
}
