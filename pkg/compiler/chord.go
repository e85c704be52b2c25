package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// expandChordProgression walks the progression's chords in order. A
// block chord emits every noteOn at the chord's start and every noteOff
// at start+duration; arpeggiation splits the duration evenly across the
// chord's notes and plays them sequentially. Velocity is 100.
func expandChordProgression(progression ChordProgression, arpeggiate bool) []event.Event {
	var out []event.Event
	var start int64

	for _, chord := range progression.Chords {
		if len(chord.Notes) == 0 {
			start += chord.Duration
			continue
		}
		if arpeggiate {
			per := chord.Duration / int64(len(chord.Notes))
			for j, offset := range chord.Notes {
				note := event.ClampNote(progression.RootNote + offset)
				out = append(out,
					event.Event{
						Delta:   start + int64(j)*per,
						Payload: event.NoteOn{Note: note, Velocity: 100},
					},
					event.Event{
						Delta:   start + int64(j+1)*per,
						Payload: event.NoteOff{Note: note},
					},
				)
			}
		} else {
			for _, offset := range chord.Notes {
				note := event.ClampNote(progression.RootNote + offset)
				out = append(out, event.Event{
					Delta:   start,
					Payload: event.NoteOn{Note: note, Velocity: 100},
				})
			}
			for _, offset := range chord.Notes {
				note := event.ClampNote(progression.RootNote + offset)
				out = append(out, event.Event{
					Delta:   start + chord.Duration,
					Payload: event.NoteOff{Note: note},
				})
			}
		}
		start += chord.Duration
	}
	return out
}
