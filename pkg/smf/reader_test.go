package smf

import (
	"bytes"
	"testing"

	"github.com/zurustar/midiweave/pkg/compiler"
)

var singleNoteSMF = []byte{
	0x4D, 0x54, 0x68, 0x64, 0x00, 0x00, 0x00, 0x06,
	0x00, 0x00, 0x00, 0x01, 0x01, 0xE0,
	0x4D, 0x54, 0x72, 0x6B, 0x00, 0x00, 0x00, 0x0B,
	0x00, 0x90, 0x3C, 0x40,
	0x83, 0x60, 0x80, 0x3C, 0x00,
	0x00, 0xFF, 0x2F, 0x00,
}

func TestDecode_SingleNote(t *testing.T) {
	doc, err := NewReader(singleNoteSMF, nil).Decode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc["format"] != 0 {
		t.Errorf("format = %v, want 0", doc["format"])
	}
	if doc["division"] != 480 {
		t.Errorf("division = %v, want 480", doc["division"])
	}

	tracks, ok := doc["tracks"].([]any)
	if !ok || len(tracks) != 1 {
		t.Fatalf("tracks = %v, want one track", doc["tracks"])
	}
	track, ok := tracks[0].([]any)
	if !ok || len(track) != 3 {
		t.Fatalf("track = %v, want three events", tracks[0])
	}

	first, _ := track[0].(map[string]any)
	noteOn, ok := first["noteOn"].(map[string]any)
	if !ok {
		t.Fatalf("first event = %v, want noteOn", first)
	}
	if noteOn["noteNumber"] != 60 || noteOn["velocity"] != 64 {
		t.Errorf("noteOn = %v, want noteNumber 60 velocity 64", noteOn)
	}

	second, _ := track[1].(map[string]any)
	if second["delta"] != int64(480) {
		t.Errorf("second delta = %v, want 480", second["delta"])
	}
	if _, ok := second["noteOff"]; !ok {
		t.Errorf("second event = %v, want noteOff", second)
	}

	last, _ := track[2].(map[string]any)
	if last["endOfTrack"] != true {
		t.Errorf("last event = %v, want endOfTrack", last)
	}
}

// ベロシティ0のnoteOnはnoteOffとして出力される
func TestDecode_NoteOnVelocityZeroBecomesNoteOff(t *testing.T) {
	data := []byte{
		0x4D, 0x54, 0x68, 0x64, 0x00, 0x00, 0x00, 0x06,
		0x00, 0x00, 0x00, 0x01, 0x01, 0xE0,
		0x4D, 0x54, 0x72, 0x6B, 0x00, 0x00, 0x00, 0x07,
		0x00, 0x90, 0x3C, 0x40,
		0x60, 0x3C, 0x00, // running status: noteOn velocity 0
	}

	doc, err := NewReader(data, nil).Decode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tracks := doc["tracks"].([]any)
	track := tracks[0].([]any)
	if len(track) != 2 {
		t.Fatalf("track has %d events, want 2", len(track))
	}
	second := track[1].(map[string]any)
	if _, ok := second["noteOn"]; ok {
		t.Error("velocity-0 noteOn survived decoding")
	}
	if _, ok := second["noteOff"]; !ok {
		t.Errorf("second event = %v, want noteOff", second)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte{'M', 'T', 'r', 'k', 0, 0, 0, 6}},
		{"bad header length", []byte{'M', 'T', 'h', 'd', 0, 0, 0, 7, 0, 0, 0, 1, 1, 0xE0}},
		{"overrun track", append(append([]byte{}, singleNoteSMF[:21]...), 0xFF)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewReader(tt.data, nil).Decode(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// デコード結果を再コンパイルするとバイト列が一致する
func TestRoundTrip_SingleNote(t *testing.T) {
	doc, err := NewReader(singleNoteSMF, nil).Decode()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	result, err := compiler.Compile(doc, 1)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteHeader(result.Format, uint16(len(result.Tracks)), result.Division); err != nil {
		t.Fatalf("write header failed: %v", err)
	}
	for _, track := range result.Tracks {
		if err := w.WriteTrack(track); err != nil {
			t.Fatalf("write track failed: %v", err)
		}
	}

	if !bytes.Equal(buf.Bytes(), singleNoteSMF) {
		t.Errorf("round trip = % X, want % X", buf.Bytes(), singleNoteSMF)
	}
}

func TestEscapeText(t *testing.T) {
	got := EscapeText([]byte{'A', 0x00, 'z', 0xFF})
	want := `A\x00z\xff`
	if got != want {
		t.Errorf("EscapeText = %q, want %q", got, want)
	}
}

func TestNewCharsetDecoder(t *testing.T) {
	if _, err := NewCharsetDecoder("no-such-charset"); err == nil {
		t.Error("expected error for unknown charset, got nil")
	}

	decoder, err := NewCharsetDecoder("Shift_JIS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Shift-JISの「ド」(0x83 0x68)
	got := decoder([]byte{0x83, 0x68})
	if got != "ド" {
		t.Errorf("decoded = %q, want %q", got, "ド")
	}
}
