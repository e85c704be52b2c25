package event

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		payload Payload
		want    string
	}{
		{NoteOn{}, "noteOn"},
		{NoteOff{}, "noteOff"},
		{ControlChange{}, "controlChange"},
		{PitchBend{}, "pitchBend"},
		{SetTempo{}, "setTempo"},
		{EndOfTrack{}, "endOfTrack"},
		{SysEx{}, "sysex"},
		{SilentNoteOn{}, "silentNoteOn"},
		{SongPositionPointer{}, "songPositionPointer"},
	}
	for _, tt := range tests {
		ev := Event{Payload: tt.payload}
		if got := ev.Kind().String(); got != tt.want {
			t.Errorf("Kind().String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKind_NilPayload(t *testing.T) {
	var ev Event
	if ev.Kind() != KindUnknown {
		t.Errorf("Kind() = %v, want KindUnknown", ev.Kind())
	}
}

func TestClamps(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int) int
		in   int
		want int
	}{
		{"velocity low", ClampVelocity, 0, 1},
		{"velocity high", ClampVelocity, 200, 127},
		{"velocity pass", ClampVelocity, 64, 64},
		{"note low", ClampNote, -5, 0},
		{"note high", ClampNote, 130, 127},
		{"data low", ClampData, -1, 0},
		{"data high", ClampData, 128, 127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
