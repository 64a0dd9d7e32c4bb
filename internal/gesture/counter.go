// Package gesture turns hand landmarks into finger counts and steadies them over time.
package gesture

import "github.com/ayusman/handsign/internal/detector"

const (
	// ScaleFactor converts normalized coordinates into the units the
	// thresholds below are expressed in.
	ScaleFactor = 100.0
	// ThumbOffset is the fixed lateral distance, in scaled units, the thumb
	// tip must clear the index knuckle by to count as extended.
	ThumbOffset = 6.0
)

// fingerJoints pairs each non-thumb knuckle with its fingertip.
var fingerJoints = [4][2]int{
	{detector.IndexMCP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddleTip},
	{detector.RingMCP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyTip},
}

// CountFingers returns how many fingers of hand are extended, in [0,5].
//
// A finger counts when its tip rises above its knuckle by more than half the
// wrist to palm-center height. The thumb moves sideways rather than up, so it
// is compared against ThumbOffset instead.
func CountFingers(hand *detector.HandLandmarks) int {
	if hand == nil {
		return 0
	}

	p := hand.Points
	thresh := (p[detector.Wrist].Y*ScaleFactor - p[detector.MiddleMCP].Y*ScaleFactor) / 2

	count := 0
	for _, j := range fingerJoints {
		if p[j[0]].Y*ScaleFactor-p[j[1]].Y*ScaleFactor > thresh {
			count++
		}
	}

	if p[detector.IndexMCP].X*ScaleFactor-p[detector.ThumbTip].X*ScaleFactor > ThumbOffset {
		count++
	}

	return count
}

// CountHand counts the fingers of the first detected hand. ok is false when
// no hand was detected, in which case the frame carries no count.
func CountHand(hands []detector.HandLandmarks) (count int, ok bool) {
	if len(hands) == 0 {
		return 0, false
	}
	return CountFingers(&hands[0]), true
}
