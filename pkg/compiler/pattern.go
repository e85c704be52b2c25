package compiler

import (
	"errors"
	"fmt"

	"github.com/zurustar/midiweave/pkg/event"
)

// ErrPatternNotFound reports a usePattern directive naming an
// undefined pattern.
var ErrPatternNotFound = errors.New("pattern not found")

// PatternStore maps names to reusable event sequences. Redefining a
// name replaces the stored sequence.
type PatternStore struct {
	patterns map[string][]event.Event
}

// NewPatternStore returns an empty store.
func NewPatternStore() *PatternStore {
	return &PatternStore{patterns: map[string][]event.Event{}}
}

// Define registers events under name, replacing any previous sequence.
func (ps *PatternStore) Define(name string, events []event.Event) {
	ps.patterns[name] = events
}

// Get returns the named sequence concatenated repetitions times. The
// result is a copy; callers may mutate it freely.
func (ps *PatternStore) Get(name string, repetitions int) ([]event.Event, error) {
	stored, ok := ps.patterns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPatternNotFound, name)
	}
	result := make([]event.Event, 0, len(stored)*repetitions)
	for i := 0; i < repetitions; i++ {
		result = append(result, stored...)
	}
	return result, nil
}
