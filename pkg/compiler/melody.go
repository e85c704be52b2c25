package compiler

import (
	"math/rand"

	"github.com/zurustar/midiweave/pkg/event"
)

// scaleMelodyNoteDuration is the tick length of each generated melody
// note.
const scaleMelodyNoteDuration = 480

// generateScaleBasedMelody picks length random scale members inside
// [minNote, maxNote] and emits each as a noteOn/noteOff pair of fixed
// duration and velocity 100.
func generateScaleBasedMelody(rng *rand.Rand, scale Scale, length, minNote, maxNote int) []event.Event {
	members := map[int]bool{}
	for _, iv := range scale.Intervals {
		members[((scale.RootNote+iv)%12+12)%12] = true
	}
	var candidates []int
	for note := minNote; note <= maxNote; note++ {
		if note >= 0 && note <= 127 && members[((note%12)+12)%12] {
			candidates = append(candidates, note)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var out []event.Event
	for i := 0; i < length; i++ {
		note := candidates[rng.Intn(len(candidates))]
		out = append(out,
			event.Event{Payload: event.NoteOn{Note: note, Velocity: 100}},
			event.Event{Delta: scaleMelodyNoteDuration, Payload: event.NoteOff{Note: note}},
		)
	}
	return out
}
