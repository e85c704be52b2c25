package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// applyArticulationPattern rewrites adjacent (noteOn, noteOff) pairs in
// place. The cyclic pattern advances once per pair: the noteOn's
// velocity scales by the velocity multiplier (clamped 1..127) and the
// following noteOff's delta scales by the duration multiplier
// (truncated to integer ticks).
func applyArticulationPattern(events []event.Event, pattern ArticulationPattern) {
	if len(pattern.Steps) == 0 {
		return
	}
	step := 0
	for i := 0; i+1 < len(events); i++ {
		on, okOn := events[i].Payload.(event.NoteOn)
		_, okOff := events[i+1].Payload.(event.NoteOff)
		if !okOn || !okOff {
			continue
		}
		s := pattern.Steps[step%len(pattern.Steps)]
		step++

		on.Velocity = event.ClampVelocity(int(float64(on.Velocity) * s.VelocityMultiplier))
		events[i].Payload = on
		events[i+1].Delta = int64(float64(events[i+1].Delta) * s.DurationMultiplier)
	}
}
