package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// applyGrooveTemplate nudges note events in place. Each noteOn/noteOff
// consumes the next cyclic groove step: the timing offset is added to
// the delta (floored at zero) and, for noteOns, the velocity offset is
// added to the velocity (clamped 1..127).
func applyGrooveTemplate(events []event.Event, groove GrooveTemplate) {
	if len(groove.Steps) == 0 {
		return
	}
	step := 0
	for i := range events {
		switch p := events[i].Payload.(type) {
		case event.NoteOn:
			s := groove.Steps[step%len(groove.Steps)]
			step++
			events[i].Delta += s.TimingOffset
			if events[i].Delta < 0 {
				events[i].Delta = 0
			}
			p.Velocity = event.ClampVelocity(p.Velocity + s.VelocityOffset)
			events[i].Payload = p
		case event.NoteOff:
			s := groove.Steps[step%len(groove.Steps)]
			step++
			events[i].Delta += s.TimingOffset
			if events[i].Delta < 0 {
				events[i].Delta = 0
			}
		}
	}
}

// applyVelocityCurve replaces each noteOn's velocity with the next
// value of the cyclic curve.
func applyVelocityCurve(events []event.Event, curve VelocityCurve) {
	if len(curve.Velocities) == 0 {
		return
	}
	step := 0
	for i := range events {
		if p, ok := events[i].Payload.(event.NoteOn); ok {
			p.Velocity = event.ClampVelocity(curve.Velocities[step%len(curve.Velocities)])
			step++
			events[i].Payload = p
		}
	}
}
