package progress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldMarkCompleted(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		duration float64
		want     bool
	}{
		{name: "zero position long lesson", position: 0, duration: 600, want: false},
		{name: "below both thresholds", position: 500, duration: 600, want: false},
		{name: "at 90 percent", position: 540, duration: 600, want: true},
		{name: "above 90 percent", position: 580, duration: 600, want: true},
		{name: "inside last 30 seconds", position: 575, duration: 600, want: true},
		{name: "exactly duration minus 30", position: 570, duration: 600, want: true},
		{name: "just under 90 percent", position: 539.5, duration: 600, want: false},
		{name: "position beyond duration", position: 700, duration: 600, want: true},

		// for durations under 300s the tail is the later gate
		{name: "just before tail of short lesson", position: 69, duration: 100, want: false},
		{name: "at tail of short lesson", position: 70, duration: 100, want: true},

		// d-30 boundary dominates 90% for short lessons
		{name: "short lesson tail beats ratio", position: 10, duration: 40, want: true},
		{name: "short lesson below tail", position: 9.5, duration: 40, want: false},

		// very short lessons complete on open
		{name: "30s lesson at zero", position: 0, duration: 30, want: true},
		{name: "25s lesson at zero", position: 0, duration: 25, want: true},
		{name: "31s lesson at zero", position: 0, duration: 31, want: false},

		// no usable duration, never complete
		{name: "zero duration", position: 100, duration: 0, want: false},
		{name: "negative duration", position: 100, duration: -10, want: false},
		{name: "NaN duration", position: 100, duration: math.NaN(), want: false},
		{name: "infinite duration", position: 100, duration: math.Inf(1), want: false},
		{name: "NaN position", position: math.NaN(), duration: 600, want: false},
		{name: "infinite position", position: math.Inf(1), duration: 600, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldMarkCompleted(tt.position, tt.duration))
		})
	}
}
