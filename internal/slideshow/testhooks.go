package slideshow

import (
	"context"

	"reelsmith/internal/media/ffprobe"
)

// probeDuration measures narration length. It is a package-level variable so
// tests can override it.
var probeDuration = ffprobe.AudioDuration

// SetProbeForTests overrides the audio duration probe during tests.
func SetProbeForTests(fn func(context.Context, string, string) (float64, error)) func() {
	previous := probeDuration
	probeDuration = fn
	return func() {
		probeDuration = previous
	}
}
