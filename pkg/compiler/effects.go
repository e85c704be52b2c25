package compiler

import (
	"math"

	"github.com/zurustar/midiweave/pkg/event"
)

// applyMidiEffect folds one defined effect over the stream and returns
// the transformed stream, stable-sorted by delta where events were
// injected or displaced.
func applyMidiEffect(events []event.Event, effect Effect) []event.Event {
	switch effect.Type {
	case EffectChordSplitter:
		return applyChordSplitter(events, getInt64(effect.Parameters, "interval", 10))
	default:
		return applyEcho(events,
			getInt64(effect.Parameters, "delay", 120),
			getInt(effect.Parameters, "repetitions", 3),
			getFloat(effect.Parameters, "decay", 0.7))
	}
}

// applyEcho copies every note event repetitions times, each copy
// delayed by a further delay ticks. Echoed noteOns decay in velocity;
// an echo whose velocity falls below 1 is dropped, together with
// nothing else (its noteOff still lands so earlier echoes release).
func applyEcho(events []event.Event, delay int64, repetitions int, decay float64) []event.Event {
	out := events
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case event.NoteOn:
			for r := 1; r <= repetitions; r++ {
				velocity := int(float64(p.Velocity) * math.Pow(decay, float64(r)))
				if velocity < 1 {
					continue
				}
				echo := p
				echo.Velocity = velocity
				out = append(out, event.Event{Delta: ev.Delta + int64(r)*delay, Payload: echo})
			}
		case event.NoteOff:
			for r := 1; r <= repetitions; r++ {
				out = append(out, event.Event{Delta: ev.Delta + int64(r)*delay, Payload: p})
			}
		}
	}
	sortEventsByDelta(out)
	return out
}

// applyChordSplitter staggers simultaneous noteOns: within each run of
// noteOns sharing a delta, the n-th note starts n*interval ticks late.
func applyChordSplitter(events []event.Event, interval int64) []event.Event {
	out := make([]event.Event, len(events))
	copy(out, events)

	i := 0
	for i < len(out) {
		if _, ok := out[i].Payload.(event.NoteOn); !ok {
			i++
			continue
		}
		j := i + 1
		for j < len(out) {
			if _, ok := out[j].Payload.(event.NoteOn); !ok {
				break
			}
			if out[j].Delta != out[i].Delta {
				break
			}
			j++
		}
		for n := i + 1; n < j; n++ {
			out[n].Delta += int64(n-i) * interval
		}
		i = j
	}
	sortEventsByDelta(out)
	return out
}
