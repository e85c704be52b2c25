package compiler

import (
	"math/rand"
	"sort"

	"github.com/zurustar/midiweave/pkg/event"
)

// applyArpeggiator spreads the notes of a chord across its time window.
// Notes come from the chord stream's noteOns, sorted ascending; the
// window is the span from the first to the last delta in the chord
// stream, cut into noteDuration slices. Each slice i plays one note as
// a (noteOn, noteOff) pair at deltas i*noteDuration and
// (i+1)*noteDuration, velocity 100.
func applyArpeggiator(rng *rand.Rand, chordEvents []event.Event, arp Arpeggiator) []event.Event {
	var notes []int
	var channel uint8
	haveChannel := false
	for _, ev := range chordEvents {
		if on, ok := ev.Payload.(event.NoteOn); ok {
			notes = append(notes, on.Note)
			if !haveChannel {
				channel = on.Channel
				haveChannel = true
			}
		}
	}
	if len(notes) == 0 || len(chordEvents) == 0 || arp.NoteDuration <= 0 {
		return nil
	}
	sort.Ints(notes)

	k := len(notes)
	totalDuration := chordEvents[len(chordEvents)-1].Delta - chordEvents[0].Delta
	steps := int(totalDuration / arp.NoteDuration)

	var out []event.Event
	for i := 0; i < steps; i++ {
		var index int
		switch arp.Mode {
		case ArpDown:
			index = k - 1 - i%k
		case ArpUpDown:
			if k > 1 {
				j := i % (2*k - 2)
				if j >= k {
					index = 2*(k-1) - j
				} else {
					index = j
				}
			}
		case ArpRandom:
			index = rng.Intn(k)
		default: // ArpUp
			index = i % k
		}

		note := event.ClampNote(notes[index] + (i/k)*12*arp.OctaveRange)
		out = append(out,
			event.Event{
				Delta:   int64(i) * arp.NoteDuration,
				Payload: event.NoteOn{Channel: channel, Note: note, Velocity: 100},
			},
			event.Event{
				Delta:   int64(i+1) * arp.NoteDuration,
				Payload: event.NoteOff{Channel: channel, Note: note, Velocity: 0},
			},
		)
	}
	return out
}
