package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// applyAdaptiveHarmonization derives harmony events for the melody
// already accumulated in the stream. Each noteOn's scale degree
// relative to rootNote selects a row of the rule's harmonization
// intervals; one parallel noteOn per interval is produced at the same
// delta. noteOffs are mirrored so the harmony releases with the
// melody.
func applyAdaptiveHarmonization(events []event.Event, rule HarmonizationRule, rootNote int) []event.Event {
	degreeIndex := func(note int) (int, bool) {
		degree := ((note-rootNote)%12 + 12) % 12
		for i, iv := range rule.ScaleIntervals {
			if iv == degree {
				return i, true
			}
		}
		return 0, false
	}

	var out []event.Event
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case event.NoteOn:
			idx, ok := degreeIndex(p.Note)
			if !ok || idx >= len(rule.HarmonizationIntervals) {
				continue
			}
			for _, interval := range rule.HarmonizationIntervals[idx] {
				out = append(out, event.Event{
					Delta: ev.Delta,
					Payload: event.NoteOn{
						Channel:  p.Channel,
						Note:     event.ClampNote(p.Note + interval),
						Velocity: p.Velocity,
					},
				})
			}
		case event.NoteOff:
			idx, ok := degreeIndex(p.Note)
			if !ok || idx >= len(rule.HarmonizationIntervals) {
				continue
			}
			for _, interval := range rule.HarmonizationIntervals[idx] {
				out = append(out, event.Event{
					Delta: ev.Delta,
					Payload: event.NoteOff{
						Channel:  p.Channel,
						Note:     event.ClampNote(p.Note + interval),
						Velocity: p.Velocity,
					},
				})
			}
		}
	}
	return out
}

// generateAdaptiveHarmony shadows every note event with a parallel
// voice a fixed interval above, snapped to the nearest scale member.
func generateAdaptiveHarmony(events []event.Event, scale Scale, interval int) []event.Event {
	var out []event.Event
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case event.NoteOn:
			p.Note = scale.NearestScaleNote(p.Note + interval)
			out = append(out, event.Event{Delta: ev.Delta, Payload: p})
		case event.NoteOff:
			p.Note = scale.NearestScaleNote(p.Note + interval)
			out = append(out, event.Event{Delta: ev.Delta, Payload: p})
		}
	}
	return out
}
