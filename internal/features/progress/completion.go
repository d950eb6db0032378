package progress

import "math"

// Seconds of tail that count as "watched to the end". Players rarely report
// the final position exactly, end cards and credits push the true stopping
// point forward of the duration.
const completionTailSeconds = 30

// Completion fraction that marks a lesson watched regardless of the tail.
const completionRatio = 0.9

// ShouldMarkCompleted decides whether a playback position completes a lesson.
// A lesson completes when the position reaches 90% of the duration or lands
// inside the last 30 seconds. Without a usable duration there is no basis to
// complete, so missing, zero or non-finite durations always return false.
//
// For durations up to 30 seconds the tail rule fires at position zero. That
// matches the player behaviour this engine grew up with: opening a very short
// lesson counts as watching it.
func ShouldMarkCompleted(positionSeconds, durationSeconds float64) bool {
	if durationSeconds <= 0 || math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) {
		return false
	}
	if math.IsNaN(positionSeconds) || math.IsInf(positionSeconds, 0) {
		return false
	}

	return positionSeconds >= durationSeconds*completionRatio ||
		positionSeconds >= durationSeconds-completionTailSeconds
}
