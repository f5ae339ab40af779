package canvas

import "github.com/ayusman/airsketch/internal/geom"

// Hit-test radii in surface pixels.
const (
	// GrabRadius is the maximum distance at which a stroke can be grabbed.
	GrabRadius = 50.0
	// EraseRadius is the distance within which any stroke point gets its stroke erased.
	EraseRadius = 40.0
)

// FindClosest returns the stroke owning the point nearest to p, provided that
// point is strictly closer than maxDistance. On exact ties the earlier stroke wins.
func (s *Store) FindClosest(p geom.Point, maxDistance float64) (*Stroke, bool) {
	var closest *Stroke
	minDist := maxDistance
	for _, st := range s.strokes {
		for _, pt := range st.Points {
			if d := geom.Distance(pt, p); d < minDist {
				minDist = d
				closest = st
			}
		}
	}
	return closest, closest != nil
}

// AnyPointWithin reports whether at least one point of the stroke is strictly
// closer than radius to p.
func AnyPointWithin(st *Stroke, p geom.Point, radius float64) bool {
	for _, pt := range st.Points {
		if geom.Distance(pt, p) < radius {
			return true
		}
	}
	return false
}

// EraseAt removes every stroke with a point within radius of p.
func (s *Store) EraseAt(p geom.Point, radius float64) int {
	return s.RemoveMatching(func(st *Stroke) bool {
		return AnyPointWithin(st, p, radius)
	})
}
