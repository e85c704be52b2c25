package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// applyTempoMap walks the stream with a running tick and inserts a
// setTempo event (delta 0) in front of the event at which the mapped
// tempo first differs from the active one. An empty map leaves the
// stream untouched.
func applyTempoMap(events []event.Event, tm TempoMap) []event.Event {
	if len(tm.Points) == 0 {
		return events
	}

	out := make([]event.Event, 0, len(events))
	var tick int64
	var active uint32
	haveActive := false

	for _, ev := range events {
		tick += ev.Delta
		if tempo, ok := tm.TempoAt(tick); ok && (!haveActive || tempo != active) {
			out = append(out, event.Event{
				Payload: event.SetTempo{MicrosecondsPerQuarter: tempo},
			})
			active = tempo
			haveActive = true
		}
		out = append(out, ev)
	}
	return out
}
