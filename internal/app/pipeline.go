package app

import (
	"log"
	"time"

	"github.com/ayusman/airsketch/internal/feed"
)

// runPipeline is the capture loop. It runs at the idle rate until motion or
// a hand appears, then at the active rate until the picture has been still
// and empty for IdleAfter.
func (t *Tracker) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	activeMode := false
	ticker := time.NewTicker(time.Second / time.Duration(t.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if _, err := t.step(now); err != nil {
				log.Printf("Error processing frame: %v", err)
				continue
			}

			if active := t.Active(); active != activeMode {
				activeMode = active
				fps := t.config.IdleFPS
				if active {
					fps = t.config.ActiveFPS
				}
				t.camera.SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				if active {
					log.Println("Switched to active mode")
				} else {
					log.Println("Switched to idle mode")
				}
			}
		}
	}
}

// step processes one frame: detect, track, then publish the sample and the
// preview frame.
func (t *Tracker) step(now time.Time) (feed.Sample, error) {
	frame, err := t.camera.ReadFrame()
	if err != nil {
		return feed.Sample{}, err
	}
	defer frame.Close()

	hands, err := t.detector.Detect(frame)
	if err != nil {
		return feed.Sample{}, err
	}

	sample := t.tracker.Process(hands, frame.Cols(), frame.Rows(), now)

	t.mu.Lock()
	if sample.Detected {
		t.activity.Hold(now)
	} else {
		t.activity.Observe(frame, now)
	}
	t.last = sample
	t.mu.Unlock()

	if t.config.Feed != nil {
		if err := t.config.Feed.Broadcast(sample); err != nil {
			log.Printf("feed broadcast error: %v", err)
		}
	}
	if t.config.Preview != nil {
		if err := t.config.Preview.Publish(frame); err != nil {
			log.Printf("preview error: %v", err)
		}
	}

	return sample, nil
}
