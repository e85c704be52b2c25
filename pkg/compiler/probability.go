package compiler

import (
	"math/rand"

	"github.com/zurustar/midiweave/pkg/event"
)

// applyEventProbabilities rolls each event against the probability
// registered for its kind; a hit merges the modification record into
// the payload, overwriting the named fields.
func applyEventProbabilities(events []event.Event, probs map[string]EventProbability, rng *rand.Rand) {
	if len(probs) == 0 {
		return
	}
	for i := range events {
		prob, ok := probs[events[i].Kind().String()]
		if !ok {
			continue
		}
		if rng.Float64() < prob.Probability {
			modifyEvent(&events[i], prob.Modification)
		}
	}
}

// modifyEvent patches an event with the fields of a modification
// record. Unknown fields for the payload's kind are ignored.
func modifyEvent(ev *event.Event, mod map[string]any) {
	if v, ok := mod["delta"]; ok {
		if n, ok := toInt(v); ok {
			ev.Delta = int64(n)
		}
	}

	switch p := ev.Payload.(type) {
	case event.NoteOn:
		p.Note = event.ClampNote(getInt(mod, "noteNumber", p.Note))
		p.Velocity = getInt(mod, "velocity", p.Velocity)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.NoteOff:
		p.Note = event.ClampNote(getInt(mod, "noteNumber", p.Note))
		p.Velocity = getInt(mod, "velocity", p.Velocity)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.PolyphonicKeyPressure:
		p.Note = event.ClampNote(getInt(mod, "noteNumber", p.Note))
		p.Pressure = getInt(mod, "pressure", p.Pressure)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.ControlChange:
		p.Controller = getInt(mod, "controllerNumber", p.Controller)
		p.Value = getInt(mod, "value", p.Value)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.ProgramChange:
		p.Program = getInt(mod, "programNumber", p.Program)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.ChannelPressure:
		p.Pressure = getInt(mod, "pressure", p.Pressure)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.PitchBend:
		p.Value = getInt(mod, "value", p.Value)
		p.Channel = uint8(getInt(mod, "channel", int(p.Channel)) & 0x0F)
		ev.Payload = p
	case event.SetTempo:
		p.MicrosecondsPerQuarter = uint32(getInt(mod, "microsecondsPerQuarter", int(p.MicrosecondsPerQuarter)))
		ev.Payload = p
	}
}
