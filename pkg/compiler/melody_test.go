package compiler

import (
	"math/rand"
	"testing"

	"github.com/zurustar/midiweave/pkg/event"
)

func TestGenerateScaleBasedMelody(t *testing.T) {
	scale := Scale{Intervals: []int{0, 2, 4, 5, 7, 9, 11}, RootNote: 60}
	rng := rand.New(rand.NewSource(3))

	got := generateScaleBasedMelody(rng, scale, 8, 60, 84)

	if len(got) != 16 {
		t.Fatalf("got %d events, want 16", len(got))
	}
	members := map[int]bool{}
	for _, iv := range scale.Intervals {
		members[(60+iv)%12] = true
	}
	for i := 0; i < 16; i += 2 {
		on, ok := got[i].Payload.(event.NoteOn)
		if !ok {
			t.Fatalf("event %d = %+v, want noteOn", i, got[i])
		}
		if on.Note < 60 || on.Note > 84 {
			t.Errorf("note %d outside range", on.Note)
		}
		if !members[on.Note%12] {
			t.Errorf("note %d is not a scale member", on.Note)
		}
		off, ok := got[i+1].Payload.(event.NoteOff)
		if !ok || off.Note != on.Note || got[i+1].Delta != 480 {
			t.Errorf("event %d = %+v, want matching noteOff at 480", i+1, got[i+1])
		}
	}
}

func TestGenerateScaleBasedMelody_EmptyRange(t *testing.T) {
	scale := Scale{Intervals: []int{0}, RootNote: 60}
	rng := rand.New(rand.NewSource(3))
	// C以外の音しか入らない範囲ではノートが見つからない
	got := generateScaleBasedMelody(rng, scale, 8, 61, 63)
	if got != nil {
		t.Errorf("got %d events, want none", len(got))
	}
}

func TestGeneratePhraseWithVariation(t *testing.T) {
	base := []event.Event{
		{Delta: 0, Payload: event.NoteOn{Note: 60, Velocity: 100}},
		{Delta: 480, Payload: event.NoteOff{Note: 60}},
	}
	phrase := PhraseWithVariation{Base: base, Repetitions: 4, Vary: varyNotesBySemitone}
	rng := rand.New(rand.NewSource(5))

	got := generatePhraseWithVariation(rng, phrase)

	if len(got) != 8 {
		t.Fatalf("got %d events, want 8", len(got))
	}
	// 最初の繰り返しは原型のまま
	if got[0].Payload.(event.NoteOn).Note != 60 {
		t.Errorf("base phrase was varied: %+v", got[0])
	}
	// 変奏は±1半音以内に収まる
	for i := 2; i < 8; i += 2 {
		note := got[i].Payload.(event.NoteOn).Note
		if note < 59 || note > 61 {
			t.Errorf("variation note = %d, want within 60±1", note)
		}
	}
}
