package compiler

import (
	"math/rand"

	"github.com/zurustar/midiweave/pkg/event"
)

// varyNotesBySemitone is the built-in phrase variation: every note
// event drifts by a uniformly random amount in {-1, 0, +1} semitones.
func varyNotesBySemitone(rng *rand.Rand, base []event.Event) []event.Event {
	variation := make([]event.Event, len(base))
	copy(variation, base)
	for i, ev := range variation {
		switch p := ev.Payload.(type) {
		case event.NoteOn:
			p.Note = event.ClampNote(p.Note + rng.Intn(3) - 1)
			variation[i].Payload = p
		case event.NoteOff:
			p.Note = event.ClampNote(p.Note + rng.Intn(3) - 1)
			variation[i].Payload = p
		}
	}
	return variation
}

// generatePhraseWithVariation emits the base phrase once followed by
// repetitions-1 varied copies.
func generatePhraseWithVariation(rng *rand.Rand, phrase PhraseWithVariation) []event.Event {
	var out []event.Event
	out = append(out, phrase.Base...)
	for i := 1; i < phrase.Repetitions; i++ {
		out = append(out, phrase.Vary(rng, phrase.Base)...)
	}
	return out
}
