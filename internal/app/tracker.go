// Package app runs the two halves of airsketch: the tracker, which turns
// camera frames into a tracking feed, and the board, which turns that feed
// into drawing.
package app

import (
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airsketch/internal/capture"
	"github.com/ayusman/airsketch/internal/detector"
	"github.com/ayusman/airsketch/internal/feed"
	"github.com/ayusman/airsketch/internal/tracking"
)

// Pipeline timing defaults.
const (
	// IdleFPS is the frame rate when nothing moves and no hand is in view.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand is being tracked.
	ActiveFPS = 30
	// IdleTimeout is how long the picture must stay still before idling.
	IdleTimeout = 2 * time.Second
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold = 1.0
)

// FramePublisher receives every captured frame, for example a live preview.
type FramePublisher interface {
	Publish(frame *gocv.Mat) error
}

// TrackerConfig holds configuration for the tracker runtime.
type TrackerConfig struct {
	Camera capture.Camera
	// Detector finds hands. When nil, MediaPipe is tried with DetectorConfig
	// and the mock detector is used if it is unavailable.
	Detector       detector.Detector
	DetectorConfig detector.Config
	Tracking       tracking.Config

	ActiveFPS    int
	IdleFPS      int
	IdleAfter    time.Duration
	MotionThresh float64

	// Feed receives one sample per frame.
	Feed Publisher
	// Preview receives each frame before it is released. Optional.
	Preview FramePublisher
}

// Tracker reads the camera, detects hands and publishes tracking samples.
type Tracker struct {
	config   TrackerConfig
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector
	activity *capture.Activity
	tracker  *tracking.Tracker

	mu     sync.RWMutex
	last   feed.Sample
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewTracker creates a tracker runtime. Missing rates and thresholds take
// the package defaults.
func NewTracker(config TrackerConfig) *Tracker {
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = IdleTimeout
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = MotionThreshold
	}
	if config.Tracking == (tracking.Config{}) {
		config.Tracking = tracking.DefaultConfig()
	}
	if config.Camera == nil {
		config.Camera = capture.NewCamera(capture.DefaultConfig())
	}

	motion := capture.NewMotionDetector(config.MotionThresh)
	t := &Tracker{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		motion:   motion,
		activity: capture.NewActivity(motion, config.IdleAfter),
		tracker:  tracking.New(config.Tracking),
		last:     feed.Undetected(),
	}

	if t.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			t.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			t.detector = detector.NewMockDetector()
		}
	}

	return t
}

// Start opens the camera and begins the capture loop.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != nil {
		return nil
	}

	if err := t.camera.Open(); err != nil {
		return err
	}
	t.camera.SetFPS(t.config.IdleFPS)

	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	go t.runPipeline(t.stopCh, t.doneCh)

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the loop and releases the camera and detector.
func (t *Tracker) Stop() {
	t.mu.Lock()
	stopCh, doneCh := t.stopCh, t.doneCh
	t.stopCh, t.doneCh = nil, nil
	t.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := t.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	t.motion.Close()
	if err := t.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}

	log.Println("Tracking pipeline stopped")
}

// LastSample returns the most recently published sample.
func (t *Tracker) LastSample() feed.Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Active reports whether the loop is running at the active frame rate.
func (t *Tracker) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activity.Active()
}

// Camera returns the camera instance.
func (t *Tracker) Camera() capture.Camera {
	return t.camera
}

// Detector returns the hand detector.
func (t *Tracker) Detector() detector.Detector {
	return t.detector
}
