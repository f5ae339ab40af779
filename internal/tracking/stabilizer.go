package tracking

import "github.com/ayusman/airsketch/internal/feed"

// ModeStabilizer reports the most frequent mode over a sliding window of
// recent classifications, so a single misread frame does not flip the mode.
type ModeStabilizer struct {
	size   int
	window []feed.Mode
}

// NewModeStabilizer returns a stabilizer over the last size classifications.
func NewModeStabilizer(size int) *ModeStabilizer {
	if size < 1 {
		size = 1
	}
	return &ModeStabilizer{size: size, window: make([]feed.Mode, 0, size)}
}

// Push records a classification and returns the stabilized mode.
// Ties go to the tied mode seen most recently.
func (s *ModeStabilizer) Push(m feed.Mode) feed.Mode {
	if len(s.window) == s.size {
		copy(s.window, s.window[1:])
		s.window = s.window[:s.size-1]
	}
	s.window = append(s.window, m)

	counts := make(map[feed.Mode]int, len(s.window))
	for _, w := range s.window {
		counts[w]++
	}

	best, bestCount := m, 0
	for i := len(s.window) - 1; i >= 0; i-- {
		w := s.window[i]
		if counts[w] > bestCount {
			best, bestCount = w, counts[w]
		}
	}
	return best
}

// Reset empties the window.
func (s *ModeStabilizer) Reset() {
	s.window = s.window[:0]
}

// Len returns the number of classifications currently held.
func (s *ModeStabilizer) Len() int {
	return len(s.window)
}
