package tracking

import (
	"github.com/ayusman/airsketch/internal/detector"
	"github.com/ayusman/airsketch/internal/feed"
)

// Classify maps a hand pose to an interaction mode.
//
// All fingers curled is eraser, index and middle up is navigation, index
// alone is drawing. Thumb and index tips closer than pinchPx in a frame of
// the given size override any of those with selection. Anything else is
// navigation.
func Classify(hand *detector.HandLandmarks, frameW, frameH int, pinchPx float64) feed.Mode {
	up := hand.FingersUp()

	mode := feed.ModeNavigation
	switch {
	case !up[detector.Thumb] && !up[detector.Index] && !up[detector.Middle] &&
		!up[detector.Ring] && !up[detector.Pinky]:
		mode = feed.ModeEraser
	case up[detector.Index] && up[detector.Middle]:
		mode = feed.ModeNavigation
	case up[detector.Index] && !up[detector.Middle]:
		mode = feed.ModeDrawing
	}

	if hand.PixelDistance(detector.ThumbTip, detector.IndexTip, float64(frameW), float64(frameH)) < pinchPx {
		mode = feed.ModeSelection
	}
	return mode
}

// Remap stretches [margin, 1-margin] onto [0,1] and clamps the result, so the
// cursor can reach the board edges without the hand leaving the frame.
func Remap(v, margin float64) float64 {
	if margin > 0 && margin < 0.5 {
		v = (v - margin) / (1 - 2*margin)
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
