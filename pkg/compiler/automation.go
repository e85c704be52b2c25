package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// applyParameterAutomation walks the stream with a running tick and
// injects a controlChange whenever an automation's interpolated value
// changes. The injected event carries the running tick as its delta;
// the stream is then stable-sorted by delta to slot the injections in.
func applyParameterAutomation(events []event.Event, automations []ParameterAutomation) []event.Event {
	if len(automations) == 0 {
		return events
	}

	lastValues := make([]int, len(automations))
	emitted := make([]bool, len(automations))

	out := events
	var tick int64
	for _, ev := range events {
		tick += ev.Delta
		for i, automation := range automations {
			value, ok := automation.ValueAt(tick)
			if !ok {
				continue
			}
			if emitted[i] && value == lastValues[i] {
				continue
			}
			lastValues[i] = value
			emitted[i] = true
			out = append(out, event.Event{
				Delta: tick,
				Payload: event.ControlChange{
					Controller: automation.Controller,
					Value:      event.ClampData(value),
				},
			})
		}
	}
	sortEventsByDelta(out)
	return out
}
