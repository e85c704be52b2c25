package compiler

import (
	"fmt"

	"github.com/zurustar/midiweave/pkg/event"
	"github.com/zurustar/midiweave/pkg/logger"
)

// Result is a compiled document: the header words plus one flat event
// sequence per track.
type Result struct {
	Format   uint16
	Division uint16
	Tracks   [][]event.Event
}

// Compile expands a decoded JSON document into per-track event
// sequences. A document with a "tracks" array yields one track per
// element; a top-level array is compiled as a single track, and any
// other document is wrapped as a one-element stream. Track muting is
// applied last, combining the top-level "trackMuting" map with any
// setTrackMute directives (tracks are addressed as "Track<N>",
// 1-based).
func Compile(doc any, seed int64) (*Result, error) {
	ctx := NewContext(seed)
	patterns := NewPatternStore()
	conditions := NewConditionEvaluator()
	expander := NewExpander(ctx, patterns, conditions)

	root, _ := asObject(doc)
	if root == nil {
		root = map[string]any{}
	}

	result := &Result{
		Format:   uint16(getInt(root, "format", 1)),
		Division: uint16(getInt(root, "division", 480)),
	}

	expandTrack := func(stream []any) {
		events := expander.ExpandStream(stream, 1)
		expander.FlushTempoChanges(&events)
		result.Tracks = append(result.Tracks, events)
	}

	if tracks, ok := asArray(root["tracks"]); ok {
		for i, trackValue := range tracks {
			stream, ok := asArray(trackValue)
			if !ok {
				logger.GetLogger().Warn("track is not a stream array, skipping", "track", i+1)
				continue
			}
			expandTrack(stream)
		}
	} else if stream, ok := asArray(doc); ok {
		// トラック配列がなければ文書全体を1トラックとして扱う
		expandTrack(stream)
	} else {
		expandTrack([]any{doc})
	}

	mutes := map[string]bool{}
	for name, muted := range ctx.TrackMutes {
		mutes[name] = muted
	}
	if muting, ok := asObject(root["trackMuting"]); ok {
		for name, v := range muting {
			if muted, ok := v.(bool); ok {
				mutes[name] = muted
			}
		}
	}
	applyTrackMuting(result.Tracks, mutes)

	if len(result.Tracks) == 0 {
		return nil, fmt.Errorf("no valid MIDI events found")
	}
	return result, nil
}

// applyTrackMuting neuters the note events of muted tracks. Muted
// noteOn/noteOff become their silent counterparts with velocity 0,
// which keep their delta time but are skipped by the encoder.
func applyTrackMuting(tracks [][]event.Event, mutes map[string]bool) {
	for i := range tracks {
		name := fmt.Sprintf("Track%d", i+1)
		if !mutes[name] {
			continue
		}
		for j := range tracks[i] {
			switch p := tracks[i][j].Payload.(type) {
			case event.NoteOn:
				tracks[i][j].Payload = event.SilentNoteOn{Channel: p.Channel, Note: p.Note}
			case event.NoteOff:
				tracks[i][j].Payload = event.SilentNoteOff{Channel: p.Channel, Note: p.Note}
			}
		}
	}
}
