package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// blurSize is the Gaussian kernel applied before differencing.
	blurSize = 21
	// pixelDelta is the grey level change a pixel needs to count as moved.
	pixelDelta = 25
)

// MotionDetector measures how much of the picture changed since the last
// frame it saw.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of the pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect compares frame with the previous one. It returns whether motion
// crossed the threshold and the percentage of pixels that changed. The first
// frame only primes the detector.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	if !m.primed || m.prev.Rows() != gray.Rows() || m.prev.Cols() != gray.Cols() {
		gray.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, pixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0
	gray.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset drops the reference frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
}

// Close releases the reference frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}

// Activity switches the capture rate between an idle and an active rate.
// Motion makes the loop active; a quiet spell longer than IdleAfter makes it
// idle again.
type Activity struct {
	motion     *MotionDetector
	idleAfter  time.Duration
	lastMotion time.Time
	active     bool
}

// NewActivity returns an Activity that starts idle.
func NewActivity(motion *MotionDetector, idleAfter time.Duration) *Activity {
	return &Activity{motion: motion, idleAfter: idleAfter}
}

// Observe feeds a frame seen at now. It reports whether the loop is active
// and whether that changed with this frame.
func (a *Activity) Observe(frame *gocv.Mat, now time.Time) (active, changed bool) {
	moved, _ := a.motion.Detect(frame)
	return a.update(moved, now)
}

// Hold keeps the loop active as if motion had been seen at now. The tracker
// calls it while a hand is in view, since a still hand is still in use.
func (a *Activity) Hold(now time.Time) (active, changed bool) {
	return a.update(true, now)
}

func (a *Activity) update(moved bool, now time.Time) (bool, bool) {
	if moved {
		a.lastMotion = now
		if !a.active {
			a.active = true
			return true, true
		}
		return true, false
	}
	if a.active && now.Sub(a.lastMotion) > a.idleAfter {
		a.active = false
		return false, true
	}
	return a.active, false
}

// Active reports the current state.
func (a *Activity) Active() bool {
	return a.active
}
