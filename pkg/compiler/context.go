// Package compiler expands the declarative JSON composition DSL into
// flat per-track event sequences ready for SMF encoding. The pipeline
// is a recursive structural walk (expander) over the document, backed
// by a compilation context that carries the named libraries the
// directives define, plus the observation state the condition
// evaluator reads.
package compiler

import (
	"math/rand"
	"sort"

	"github.com/zurustar/midiweave/pkg/event"
)

// ArpMode selects the note ordering of an arpeggiator.
type ArpMode int

const (
	ArpUp ArpMode = iota
	ArpDown
	ArpUpDown
	ArpRandom
)

// Scale is a named interval set anchored at a root note.
type Scale struct {
	Intervals []int
	RootNote  int
}

// NearestScaleNote returns the scale member closest to note, widening
// the search one semitone at a time, upward first. The result is
// clamped to the MIDI note range.
func (s Scale) NearestScaleNote(note int) int {
	members := make(map[int]bool, len(s.Intervals))
	for _, iv := range s.Intervals {
		members[((s.RootNote+iv)%12+12)%12] = true
	}
	if len(members) == 0 {
		return event.ClampNote(note)
	}
	for offset := 0; offset <= 12; offset++ {
		for _, candidate := range []int{note + offset, note - offset} {
			if members[((candidate%12)+12)%12] {
				return event.ClampNote(candidate)
			}
		}
	}
	return event.ClampNote(note)
}

// GrooveStep is one cyclic groove entry: a timing offset in ticks and a
// velocity offset.
type GrooveStep struct {
	TimingOffset   int64
	VelocityOffset int
}

// GrooveTemplate is a cyclic list of groove steps.
type GrooveTemplate struct {
	Steps []GrooveStep
}

// ArticulationStep scales one note pair: the noteOff delta by
// DurationMultiplier and the noteOn velocity by VelocityMultiplier.
type ArticulationStep struct {
	DurationMultiplier float64
	VelocityMultiplier float64
}

// ArticulationPattern is a cyclic list of articulation steps.
type ArticulationPattern struct {
	Steps []ArticulationStep
}

// Chord is one step of a chord progression: note offsets from the
// progression root and a duration in ticks.
type Chord struct {
	Notes    []int
	Duration int64
}

// ChordProgression is a root note plus an ordered chord list.
type ChordProgression struct {
	RootNote int
	Chords   []Chord
}

// Arpeggiator turns a chord into a sequential note pattern.
type Arpeggiator struct {
	Mode         ArpMode
	OctaveRange  int
	NoteDuration int64
}

// Polyrhythm superimposes rhythms whose cycle lengths meet at their
// least common multiple. Patterns[i] is the event sequence repeated for
// Rhythms[i].
type Polyrhythm struct {
	Rhythms  []int
	Patterns [][]event.Event
}

// PhraseWithVariation repeats a base phrase with a variation function
// applied to every repetition after the first.
type PhraseWithVariation struct {
	Base        []event.Event
	Repetitions int
	Vary        func(*rand.Rand, []event.Event) []event.Event
}

// VelocityCurve is a cyclic velocity sequence applied to noteOns.
type VelocityCurve struct {
	Velocities []int
}

// HarmonizationRule aligns scale degrees with the interval sets used to
// harmonize them.
type HarmonizationRule struct {
	ScaleIntervals         []int
	HarmonizationIntervals [][]int
}

// RandomizationParams drives the humanizing randomization pass.
type RandomizationParams struct {
	VelocityRange   int
	TimingRange     int
	PitchRange      int
	NoteProbability float64
}

// EffectType discriminates the defined MIDI effects.
type EffectType int

const (
	EffectEcho EffectType = iota
	EffectChordSplitter
)

// Effect is a defined MIDI effect plus its raw parameter record.
type Effect struct {
	Type       EffectType
	Parameters map[string]any
}

// EventProbability mutates events of one kind with some probability by
// patching payload fields.
type EventProbability struct {
	Probability  float64
	Modification map[string]any
}

// TempoPoint anchors a tempo at an absolute tick.
type TempoPoint struct {
	Tick                   int64
	MicrosecondsPerQuarter uint32
}

// TempoMap is a tick-sorted tempo point list.
type TempoMap struct {
	Points []TempoPoint
}

// TempoAt returns the latest tempo whose tick is <= tick, and whether
// any point applies.
func (tm TempoMap) TempoAt(tick int64) (uint32, bool) {
	var tempo uint32
	found := false
	for _, p := range tm.Points {
		if p.Tick > tick {
			break
		}
		tempo = p.MicrosecondsPerQuarter
		found = true
	}
	return tempo, found
}

// TempoChange is a deferred tempo change queued by the tempoChange
// directive and flushed at the end of its stream.
type TempoChange struct {
	DeltaTime              int64
	MicrosecondsPerQuarter uint32
}

// AutomationPoint is one (tick, value) anchor of a parameter
// automation.
type AutomationPoint struct {
	Tick  int64
	Value int
}

// ParameterAutomation interpolates controller values between sorted
// anchor points.
type ParameterAutomation struct {
	Controller int
	Points     []AutomationPoint
}

// ValueAt linearly interpolates the controller value at tick, clamping
// outside the anchored range. ok is false when no points exist.
func (pa ParameterAutomation) ValueAt(tick int64) (int, bool) {
	if len(pa.Points) == 0 {
		return 0, false
	}
	if tick <= pa.Points[0].Tick {
		return pa.Points[0].Value, true
	}
	last := pa.Points[len(pa.Points)-1]
	if tick >= last.Tick {
		return last.Value, true
	}
	for i := 1; i < len(pa.Points); i++ {
		a, b := pa.Points[i-1], pa.Points[i]
		if tick <= b.Tick {
			if b.Tick == a.Tick {
				return b.Value, true
			}
			span := float64(b.Tick - a.Tick)
			frac := float64(tick-a.Tick) / span
			return a.Value + int(frac*float64(b.Value-a.Value)), true
		}
	}
	return last.Value, true
}

// Context is the per-compilation state: the named libraries the
// directives register, the deferred transform inputs, the observation
// state conditions read, and the seeded random source. One context is
// shared by every track of a single compile.
type Context struct {
	Scales               map[string]Scale
	GrooveTemplates      map[string]GrooveTemplate
	ArticulationPatterns map[string]ArticulationPattern
	ChordProgressions    map[string]ChordProgression
	Arpeggiators         map[string]Arpeggiator
	Polyrhythms          map[string]Polyrhythm
	Phrases              map[string]PhraseWithVariation
	VelocityCurves       map[string]VelocityCurve
	HarmonizationRules   map[string]HarmonizationRule
	Effects              []Effect
	EventProbabilities   map[string]EventProbability
	TempoMap             TempoMap
	TempoChanges         []TempoChange
	Automations          []ParameterAutomation
	Randomization        RandomizationParams
	TrackMutes           map[string]bool

	// Observation state, updated as the expander emits events.
	NoteCounts        map[int]int
	NoteSequence      []int
	TotalDeltaTime    int64
	DeltaTimeSequence []int64
	CurrentPolyphony  int
	MinVelocity       int
	MaxVelocity       int
	ControllerValues  map[int]int

	Rand *rand.Rand
}

// NewContext returns an empty context whose random source is seeded
// with seed.
func NewContext(seed int64) *Context {
	return &Context{
		Scales:               map[string]Scale{},
		GrooveTemplates:      map[string]GrooveTemplate{},
		ArticulationPatterns: map[string]ArticulationPattern{},
		ChordProgressions:    map[string]ChordProgression{},
		Arpeggiators:         map[string]Arpeggiator{},
		Polyrhythms:          map[string]Polyrhythm{},
		Phrases:              map[string]PhraseWithVariation{},
		VelocityCurves:       map[string]VelocityCurve{},
		HarmonizationRules:   map[string]HarmonizationRule{},
		EventProbabilities:   map[string]EventProbability{},
		TrackMutes:           map[string]bool{},
		NoteCounts:           map[int]int{},
		ControllerValues:     map[int]int{},
		MinVelocity:          127,
		MaxVelocity:          0,
		Rand:                 rand.New(rand.NewSource(seed)),
	}
}

// Observe folds one emitted event into the observation state.
func (c *Context) Observe(ev event.Event) {
	c.TotalDeltaTime += ev.Delta
	c.DeltaTimeSequence = append(c.DeltaTimeSequence, ev.Delta)

	switch p := ev.Payload.(type) {
	case event.NoteOn:
		c.NoteCounts[p.Note]++
		c.NoteSequence = append(c.NoteSequence, p.Note)
		c.CurrentPolyphony++
		if p.Velocity < c.MinVelocity {
			c.MinVelocity = p.Velocity
		}
		if p.Velocity > c.MaxVelocity {
			c.MaxVelocity = p.Velocity
		}
	case event.NoteOff:
		if c.CurrentPolyphony > 0 {
			c.CurrentPolyphony--
		}
	case event.ControlChange:
		c.ControllerValues[p.Controller] = p.Value
	}
}

// NoteCount returns how many times note has been observed.
func (c *Context) NoteCount(note int) int {
	return c.NoteCounts[note]
}

// SortTempoMap keeps the tempo map sorted by tick after registration.
func (c *Context) SortTempoMap() {
	sort.SliceStable(c.TempoMap.Points, func(i, j int) bool {
		return c.TempoMap.Points[i].Tick < c.TempoMap.Points[j].Tick
	})
}
