package compiler

import (
	"testing"

	"github.com/zurustar/midiweave/pkg/event"
)

func TestApplyGrooveTemplate(t *testing.T) {
	events := []event.Event{
		{Delta: 0, Payload: event.NoteOn{Note: 60, Velocity: 100}},
		{Delta: 480, Payload: event.NoteOff{Note: 60}},
		{Delta: 10, Payload: event.NoteOn{Note: 62, Velocity: 100}},
	}
	groove := GrooveTemplate{Steps: []GrooveStep{
		{TimingOffset: 20, VelocityOffset: 10},
		{TimingOffset: -600, VelocityOffset: -5},
	}}

	applyGrooveTemplate(events, groove)

	if events[0].Delta != 20 {
		t.Errorf("delta[0] = %d, want 20", events[0].Delta)
	}
	if on := events[0].Payload.(event.NoteOn); on.Velocity != 110 {
		t.Errorf("velocity[0] = %d, want 110", on.Velocity)
	}
	// タイミングオフセットで負になるデルタは0で止まる
	if events[1].Delta != 0 {
		t.Errorf("delta[1] = %d, want 0", events[1].Delta)
	}
	if events[2].Delta != 30 {
		t.Errorf("delta[2] = %d, want 30 (cycled)", events[2].Delta)
	}
}

func TestApplyVelocityCurve(t *testing.T) {
	events := []event.Event{
		{Payload: event.NoteOn{Note: 60, Velocity: 1}},
		{Payload: event.NoteOff{Note: 60}},
		{Payload: event.NoteOn{Note: 62, Velocity: 1}},
		{Payload: event.NoteOn{Note: 64, Velocity: 1}},
	}
	curve := VelocityCurve{Velocities: []int{64, 96}}

	applyVelocityCurve(events, curve)

	want := []int{64, 96, 64}
	var got []int
	for _, ev := range events {
		if on, ok := ev.Payload.(event.NoteOn); ok {
			got = append(got, on.Velocity)
		}
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("velocity[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
