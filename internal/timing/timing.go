// Package timing turns step text into a deterministic, jittered keystroke
// schedule. Determinism for a fixed seed is load-bearing: resume regenerates
// the identical schedule and slices it at the saved cursor, so an interrupted
// command continues with exactly the delays an uninterrupted run would have
// used.
package timing

import (
	"math/rand"
	"time"

	"github.com/simon/scenecast/internal/scene"
)

// Keystroke is one scheduled character and the delay to sleep before
// sending it.
type Keystroke struct {
	Rune  rune
	Delay time.Duration
}

// Schedule produces the full keystroke schedule for text under profile p,
// using a random stream seeded with seed. Empty text yields an empty
// schedule. The jitter multiplier is drawn per character, uniformly from
// [JitterMin, JitterMax].
func Schedule(text string, p scene.TimingProfile, seed int64) []Keystroke {
	if text == "" {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	base := float64(time.Duration(p.BaseDelay))
	spread := p.JitterMax - p.JitterMin

	runes := []rune(text)
	schedule := make([]Keystroke, len(runes))
	for i, r := range runes {
		mult := p.JitterMin + rng.Float64()*spread
		schedule[i] = Keystroke{
			Rune:  r,
			Delay: time.Duration(base * mult),
		}
	}
	return schedule
}

// ScheduleFrom regenerates the schedule for text and returns the suffix
// starting at cursor. A cursor at or past the end yields nil.
func ScheduleFrom(text string, p scene.TimingProfile, seed int64, cursor int) []Keystroke {
	full := Schedule(text, p, seed)
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(full) {
		return nil
	}
	return full[cursor:]
}

// StepSeed derives a per-step seed from the session seed, so resuming at
// step i regenerates that step's schedule without consuming the random
// stream of earlier steps.
func StepSeed(sessionSeed int64, stepIndex int) int64 {
	// splitmix-style mix; any stable bijection would do.
	z := uint64(sessionSeed) + uint64(stepIndex+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
