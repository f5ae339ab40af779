// Package geom provides the small amount of 2D geometry the drawing surface needs.
package geom

import "math"

// Point is a position on the drawing surface, in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Nearest returns the index of the point closest to target and its distance.
// The first point wins ties. Returns -1 and +Inf for an empty slice.
func Nearest(points []Point, target Point) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		if d := Distance(p, target); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}
