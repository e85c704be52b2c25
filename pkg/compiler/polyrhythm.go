package compiler

import (
	"github.com/zurustar/midiweave/pkg/event"
)

// polyrhythmTickScale converts rhythm units into ticks.
const polyrhythmTickScale = 480

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

// generatePolyrhythm lays out each rhythm's pattern over measures of
// the rhythms' common cycle. With cycle L = LCM(rhythms), rhythm i is
// repeated L/rhythms[i] times per measure, each copy shifted to its
// slot; the merged result is stable-sorted by delta.
func generatePolyrhythm(poly Polyrhythm, measures int) []event.Event {
	if len(poly.Rhythms) == 0 {
		return nil
	}
	cycle := poly.Rhythms[0]
	for _, r := range poly.Rhythms[1:] {
		cycle = lcm(cycle, r)
	}
	if cycle == 0 {
		return nil
	}

	var out []event.Event
	for m := 0; m < measures; m++ {
		for i, rhythm := range poly.Rhythms {
			if i >= len(poly.Patterns) || rhythm == 0 {
				continue
			}
			copies := cycle / rhythm
			for c := 0; c < copies; c++ {
				offset := int64(m)*int64(cycle)*polyrhythmTickScale +
					int64(c)*int64(rhythm)*polyrhythmTickScale/int64(copies)
				for _, ev := range poly.Patterns[i] {
					ev.Delta += offset
					out = append(out, ev)
				}
			}
		}
	}
	sortEventsByDelta(out)
	return out
}
