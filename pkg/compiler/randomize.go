package compiler

import (
	"math/rand"

	"github.com/zurustar/midiweave/pkg/event"
)

// jitter draws a uniform offset in [-spread, +spread].
func jitter(rng *rand.Rand, spread int) int {
	if spread <= 0 {
		return 0
	}
	return rng.Intn(2*spread+1) - spread
}

// applyRandomization humanizes a stream. Each noteOn survives with
// params.NoteProbability; a dropped noteOn also drops the next noteOff
// of the same note number. Surviving noteOns get velocity and pitch
// offsets, and every event's delta is jittered within the timing range
// (floored at zero).
func applyRandomization(events []event.Event, params RandomizationParams, rng *rand.Rand) []event.Event {
	out := make([]event.Event, 0, len(events))
	pendingDrops := map[int]int{}

	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case event.NoteOn:
			if rng.Float64() >= params.NoteProbability {
				pendingDrops[p.Note]++
				continue
			}
			p.Velocity = event.ClampVelocity(p.Velocity + jitter(rng, params.VelocityRange))
			p.Note = event.ClampNote(p.Note + jitter(rng, params.PitchRange))
			ev.Payload = p
		case event.NoteOff:
			if pendingDrops[p.Note] > 0 {
				pendingDrops[p.Note]--
				continue
			}
		}
		ev.Delta += int64(jitter(rng, params.TimingRange))
		if ev.Delta < 0 {
			ev.Delta = 0
		}
		out = append(out, ev)
	}
	return out
}

// applyControlledRandomization is the two-parameter variant: velocity
// jitter on noteOns and timing jitter on note events, never dropping
// anything.
func applyControlledRandomization(events []event.Event, rng *rand.Rand, velocityRange, timingRange int) {
	for i := range events {
		switch p := events[i].Payload.(type) {
		case event.NoteOn:
			p.Velocity = event.ClampVelocity(p.Velocity + jitter(rng, velocityRange))
			events[i].Payload = p
			events[i].Delta += int64(jitter(rng, timingRange))
		case event.NoteOff:
			events[i].Delta += int64(jitter(rng, timingRange))
		}
		if events[i].Delta < 0 {
			events[i].Delta = 0
		}
	}
}
