package compiler

import (
	"testing"

	"github.com/zurustar/midiweave/pkg/event"
)

func TestExpandChordProgression_Block(t *testing.T) {
	progression := ChordProgression{
		RootNote: 60,
		Chords: []Chord{
			{Notes: []int{0, 4, 7}, Duration: 480},
			{Notes: []int{5, 9, 12}, Duration: 480},
		},
	}
	got := expandChordProgression(progression, false)

	if len(got) != 12 {
		t.Fatalf("got %d events, want 12", len(got))
	}
	// 1つ目の和音: noteOnは開始位置、noteOffは開始+長さ
	for i := 0; i < 3; i++ {
		on := got[i].Payload.(event.NoteOn)
		if got[i].Delta != 0 || on.Velocity != 100 {
			t.Errorf("chord 1 noteOn %d = %+v", i, got[i])
		}
	}
	for i := 3; i < 6; i++ {
		if _, ok := got[i].Payload.(event.NoteOff); !ok || got[i].Delta != 480 {
			t.Errorf("chord 1 noteOff %d = %+v", i, got[i])
		}
	}
	// 2つ目の和音は480から始まる
	if got[6].Delta != 480 {
		t.Errorf("chord 2 start = %d, want 480", got[6].Delta)
	}
	if on := got[6].Payload.(event.NoteOn); on.Note != 65 {
		t.Errorf("chord 2 first note = %d, want 65", on.Note)
	}
}

func TestExpandChordProgression_Arpeggiated(t *testing.T) {
	progression := ChordProgression{
		RootNote: 60,
		Chords:   []Chord{{Notes: []int{0, 4, 7}, Duration: 480}},
	}
	got := expandChordProgression(progression, true)

	if len(got) != 6 {
		t.Fatalf("got %d events, want 6", len(got))
	}
	// 長さは音数で均等割りされ、順番に鳴る
	wantOnDeltas := []int64{0, 160, 320}
	for i := 0; i < 3; i++ {
		if got[2*i].Delta != wantOnDeltas[i] {
			t.Errorf("noteOn %d delta = %d, want %d", i, got[2*i].Delta, wantOnDeltas[i])
		}
		if got[2*i+1].Delta != wantOnDeltas[i]+160 {
			t.Errorf("noteOff %d delta = %d, want %d", i, got[2*i+1].Delta, wantOnDeltas[i]+160)
		}
	}
}
