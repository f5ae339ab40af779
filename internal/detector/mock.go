package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// finger sets the four joints of a finger starting at its MCP index.
func (h *HandLandmarks) finger(mcp int, joints ...Point3D) {
	for i, p := range joints {
		h.Points[mcp+i] = p
	}
}

// palm returns a right hand with the wrist and knuckles placed, fingers unset.
func palm() HandLandmarks {
	h := HandLandmarks{Handedness: HandRight, Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}
	return h
}

// Finger poses shared by the presets. Y grows downward.
var (
	indexUp    = []Point3D{{X: 0.55, Y: 0.66}, {X: 0.56, Y: 0.55}, {X: 0.57, Y: 0.45}, {X: 0.58, Y: 0.35}}
	indexDown  = []Point3D{{X: 0.55, Y: 0.66}, {X: 0.53, Y: 0.62}, {X: 0.50, Y: 0.66}, {X: 0.47, Y: 0.70}}
	middleUp   = []Point3D{{X: 0.50, Y: 0.65}, {X: 0.50, Y: 0.52}, {X: 0.50, Y: 0.40}, {X: 0.50, Y: 0.28}}
	middleDown = []Point3D{{X: 0.50, Y: 0.65}, {X: 0.49, Y: 0.62}, {X: 0.47, Y: 0.66}, {X: 0.46, Y: 0.70}}
	ringDown   = []Point3D{{X: 0.45, Y: 0.67}, {X: 0.44, Y: 0.64}, {X: 0.43, Y: 0.68}, {X: 0.42, Y: 0.71}}
	pinkyDown  = []Point3D{{X: 0.40, Y: 0.70}, {X: 0.39, Y: 0.67}, {X: 0.38, Y: 0.70}, {X: 0.37, Y: 0.73}}
	// Thumb folded across the palm: tip right of the IP joint on a right hand.
	thumbFolded = []Point3D{{X: 0.55, Y: 0.76}, {X: 0.58, Y: 0.74}, {X: 0.60, Y: 0.72}, {X: 0.62, Y: 0.74}}
)

// PointingLandmarks returns a right hand with only the index finger extended.
// The tracker reads it as drawing.
func PointingLandmarks() HandLandmarks {
	h := palm()
	h.finger(ThumbCMC, thumbFolded...)
	h.finger(IndexMCP, indexUp...)
	h.finger(MiddleMCP, middleDown...)
	h.finger(RingMCP, ringDown...)
	h.finger(PinkyMCP, pinkyDown...)
	return h
}

// PeaceLandmarks returns a right hand with index and middle fingers extended.
// The tracker reads it as navigation.
func PeaceLandmarks() HandLandmarks {
	h := PointingLandmarks()
	h.finger(MiddleMCP, middleUp...)
	return h
}

// FistLandmarks returns a right hand with every finger curled.
// The tracker reads it as eraser.
func FistLandmarks() HandLandmarks {
	h := palm()
	h.finger(ThumbCMC, thumbFolded...)
	h.finger(IndexMCP, indexDown...)
	h.finger(MiddleMCP, middleDown...)
	h.finger(RingMCP, ringDown...)
	h.finger(PinkyMCP, pinkyDown...)
	return h
}

// PinchLandmarks returns a right hand with the thumb tip touching the index tip.
// The tracker reads it as selection.
func PinchLandmarks() HandLandmarks {
	h := PointingLandmarks()
	h.finger(ThumbCMC,
		Point3D{X: 0.56, Y: 0.74},
		Point3D{X: 0.62, Y: 0.62},
		Point3D{X: 0.61, Y: 0.45},
		Point3D{X: 0.59, Y: 0.36},
	)
	return h
}
