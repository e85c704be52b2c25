package compiler

import (
	"encoding/json"
	"testing"

	"github.com/zurustar/midiweave/pkg/event"
)

func decodeDoc(t *testing.T, src string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	return doc
}

func TestCompile_MultiTrack(t *testing.T) {
	doc := decodeDoc(t, `{
		"format": 1,
		"division": 96,
		"tracks": [
			[{"delta":0,"noteOn":{"noteNumber":60,"velocity":64},"channel":0}],
			[{"delta":0,"noteOn":{"noteNumber":48,"velocity":64},"channel":1}]
		]
	}`)
	result, err := Compile(doc, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Format != 1 || result.Division != 96 {
		t.Errorf("header = %d/%d, want 1/96", result.Format, result.Division)
	}
	if len(result.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(result.Tracks))
	}
}

func TestCompile_DefaultsAndSingleStream(t *testing.T) {
	doc := decodeDoc(t, `[
		{"delta":0,"noteOn":{"noteNumber":60,"velocity":64},"channel":0}
	]`)
	result, err := Compile(doc, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Format != 1 || result.Division != 480 {
		t.Errorf("header = %d/%d, want defaults 1/480", result.Format, result.Division)
	}
	if len(result.Tracks) != 1 || len(result.Tracks[0]) != 1 {
		t.Fatalf("tracks = %+v, want one track with one event", result.Tracks)
	}
}

// ミュートされたトラックのノートは無音イベントに置き換わる
func TestCompile_TrackMuting(t *testing.T) {
	doc := decodeDoc(t, `{
		"format": 0,
		"division": 480,
		"trackMuting": {"Track1": true},
		"tracks": [[
			{"delta":0,"noteOn":{"noteNumber":60,"velocity":64},"channel":0},
			{"delta":480,"noteOff":{"noteNumber":60,"velocity":0},"channel":0},
			{"endOfTrack":true,"delta":0}
		]]
	}`)
	result, err := Compile(doc, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	track := result.Tracks[0]
	if _, ok := track[0].Payload.(event.SilentNoteOn); !ok {
		t.Errorf("event 0 = %+v, want silentNoteOn", track[0])
	}
	if _, ok := track[1].Payload.(event.SilentNoteOff); !ok {
		t.Errorf("event 1 = %+v, want silentNoteOff", track[1])
	}
	if track[1].Delta != 480 {
		t.Errorf("muted note kept delta = %d, want 480", track[1].Delta)
	}
	if _, ok := track[2].Payload.(event.EndOfTrack); !ok {
		t.Errorf("event 2 = %+v, want endOfTrack untouched", track[2])
	}
}

func TestCompile_SetTrackMuteDirective(t *testing.T) {
	doc := decodeDoc(t, `{
		"tracks": [[
			{"setTrackMute":{"track":"Track1","mute":true}},
			{"delta":0,"noteOn":{"noteNumber":60,"velocity":64},"channel":0}
		]]
	}`)
	result, err := Compile(doc, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.Tracks[0][0].Payload.(event.SilentNoteOn); !ok {
		t.Errorf("event = %+v, want silentNoteOn", result.Tracks[0][0])
	}
}

func TestCompile_SharedContextAcrossTracks(t *testing.T) {
	doc := decodeDoc(t, `{
		"tracks": [
			[{"definePattern":{"name":"riff","events":[
				{"delta":0,"noteOn":{"noteNumber":60,"velocity":100},"channel":0}
			]}}],
			[{"usePattern":{"name":"riff","repetitions":2}}]
		]
	}`)
	result, err := Compile(doc, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(result.Tracks))
	}
	if len(result.Tracks[1]) != 2 {
		t.Errorf("track 2 has %d events, want 2 (pattern shared across tracks)", len(result.Tracks[1]))
	}
}
