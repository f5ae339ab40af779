// Package detector provides hand detection interfaces and types for the tracker.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels as reported by MediaPipe, as seen from the camera.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// Finger positions in the array returned by FingersUp.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// tipIDs are the fingertip landmarks, thumb first.
var tipIDs = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D represents a normalized landmark. X and Y are in [0,1] of the frame.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FingersUp reports which fingers are extended.
//
// The thumb counts as up when its tip lies outward of its IP joint along X,
// which side being outward depends on handedness. The other fingers count as
// up when the tip is above (smaller Y than) the PIP joint.
func (h *HandLandmarks) FingersUp() [5]bool {
	var up [5]bool

	tip := h.Points[ThumbTip]
	ip := h.Points[ThumbIP]
	if h.Handedness == HandLeft {
		up[Thumb] = tip.X > ip.X
	} else {
		up[Thumb] = tip.X < ip.X
	}

	for f := Index; f <= Pinky; f++ {
		up[f] = h.Points[tipIDs[f]].Y < h.Points[tipIDs[f]-2].Y
	}
	return up
}

// PixelDistance returns the 2D distance between two landmarks once scaled
// to a frame of the given size.
func (h *HandLandmarks) PixelDistance(a, b int, width, height float64) float64 {
	pa, pb := h.Points[a], h.Points[b]
	return math.Hypot((pa.X-pb.X)*width, (pa.Y-pb.Y)*height)
}
