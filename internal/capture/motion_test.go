package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestMotionDetector(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	t.Run("first frame primes", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()
		if moved, pct := md.Detect(&black); moved || pct != 0 {
			t.Errorf("Detect() = %v, %f on first frame", moved, pct)
		}
	})

	t.Run("identical frames are still", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()
		md.Detect(&black)
		if moved, pct := md.Detect(&black); moved {
			t.Errorf("identical frames reported motion, pct = %f", pct)
		}
	})

	t.Run("black to white moves", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()
		md.Detect(&black)
		moved, pct := md.Detect(&white)
		if !moved || pct < 50 {
			t.Errorf("Detect() = %v, %f, want motion above 50%%", moved, pct)
		}
	})

	t.Run("reset re-primes", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()
		md.Detect(&black)
		md.Reset()
		if moved, _ := md.Detect(&white); moved {
			t.Error("first frame after Reset should not report motion")
		}
	})

	t.Run("nil frame", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()
		if moved, _ := md.Detect(nil); moved {
			t.Error("nil frame reported motion")
		}
	})
}

func TestActivity(t *testing.T) {
	t0 := time.Unix(500, 0)
	a := NewActivity(NewMotionDetector(1.0), 2*time.Second)

	if a.Active() {
		t.Fatal("activity should start idle")
	}

	active, changed := a.Hold(t0)
	if !active || !changed {
		t.Errorf("Hold() = %v, %v, want active and changed", active, changed)
	}

	active, changed = a.Hold(t0.Add(time.Second))
	if !active || changed {
		t.Errorf("second Hold() = %v, %v, want active and unchanged", active, changed)
	}

	active, changed = a.update(false, t0.Add(2*time.Second))
	if !active || changed {
		t.Errorf("quiet within window = %v, %v, want still active", active, changed)
	}

	active, changed = a.update(false, t0.Add(3500*time.Millisecond))
	if active || !changed {
		t.Errorf("quiet past window = %v, %v, want idle and changed", active, changed)
	}

	active, changed = a.update(false, t0.Add(10*time.Second))
	if active || changed {
		t.Errorf("staying idle = %v, %v", active, changed)
	}
}
