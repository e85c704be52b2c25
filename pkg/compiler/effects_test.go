package compiler

import (
	"testing"

	"github.com/zurustar/midiweave/pkg/event"
)

func TestApplyEcho(t *testing.T) {
	events := []event.Event{
		{Delta: 0, Payload: event.NoteOn{Note: 60, Velocity: 100}},
		{Delta: 480, Payload: event.NoteOff{Note: 60}},
	}
	effect := Effect{Type: EffectEcho, Parameters: map[string]any{
		"delay":       120.0,
		"repetitions": 2.0,
		"decay":       0.5,
	}}
	got := applyMidiEffect(events, effect)

	// 元の2 + noteOnエコー2 + noteOffエコー2
	if len(got) != 6 {
		t.Fatalf("got %d events, want 6", len(got))
	}
	var velocities []int
	var deltas []int64
	for _, ev := range got {
		if on, ok := ev.Payload.(event.NoteOn); ok {
			velocities = append(velocities, on.Velocity)
			deltas = append(deltas, ev.Delta)
		}
	}
	wantVel := []int{100, 50, 25}
	wantDeltas := []int64{0, 120, 240}
	for i := range wantVel {
		if velocities[i] != wantVel[i] || deltas[i] != wantDeltas[i] {
			t.Errorf("echo %d = velocity %d at %d, want %d at %d",
				i, velocities[i], deltas[i], wantVel[i], wantDeltas[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Delta < got[i-1].Delta {
			t.Fatalf("echoes not sorted by delta at %d", i)
		}
	}
}

func TestApplyEcho_DropsInaudibleEchoes(t *testing.T) {
	events := []event.Event{
		{Delta: 0, Payload: event.NoteOn{Note: 60, Velocity: 1}},
	}
	effect := Effect{Type: EffectEcho, Parameters: map[string]any{
		"delay":       120.0,
		"repetitions": 3.0,
		"decay":       0.5,
	}}
	got := applyMidiEffect(events, effect)
	if len(got) != 1 {
		t.Errorf("got %d events, want 1 (all echoes inaudible)", len(got))
	}
}

func TestApplyChordSplitter(t *testing.T) {
	events := []event.Event{
		{Delta: 0, Payload: event.NoteOn{Note: 60, Velocity: 100}},
		{Delta: 0, Payload: event.NoteOn{Note: 64, Velocity: 100}},
		{Delta: 0, Payload: event.NoteOn{Note: 67, Velocity: 100}},
		{Delta: 480, Payload: event.NoteOff{Note: 60}},
	}
	effect := Effect{Type: EffectChordSplitter, Parameters: map[string]any{"interval": 10.0}}
	got := applyMidiEffect(events, effect)

	if len(got) != 4 {
		t.Fatalf("got %d events, want 4", len(got))
	}
	wantDeltas := map[int]int64{60: 0, 64: 10, 67: 20}
	for _, ev := range got {
		if on, ok := ev.Payload.(event.NoteOn); ok {
			if ev.Delta != wantDeltas[on.Note] {
				t.Errorf("note %d delta = %d, want %d", on.Note, ev.Delta, wantDeltas[on.Note])
			}
		}
	}
}
