package compiler

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownCondition reports a conditional whose type has no
// registered predicate.
var ErrUnknownCondition = errors.New("unknown condition type")

// ConditionFunc is a pure predicate over the compilation context and a
// JSON parameter record.
type ConditionFunc func(*Context, map[string]any) bool

// ConditionEvaluator dispatches conditional directives to named
// predicates.
type ConditionEvaluator struct {
	conditions map[string]ConditionFunc
}

// Evaluate runs the named predicate. An unregistered name yields
// ErrUnknownCondition.
func (ce *ConditionEvaluator) Evaluate(condType string, ctx *Context, params map[string]any) (bool, error) {
	fn, ok := ce.conditions[condType]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCondition, condType)
	}
	return fn(ctx, params), nil
}

// NewConditionEvaluator registers the built-in predicate set.
func NewConditionEvaluator() *ConditionEvaluator {
	ce := &ConditionEvaluator{conditions: map[string]ConditionFunc{}}

	ce.conditions["noteCount"] = func(ctx *Context, params map[string]any) bool {
		note := getInt(params, "noteNumber", 0)
		count := getInt(params, "count", 0)
		return ctx.NoteCount(note) >= count
	}

	ce.conditions["totalNoteCount"] = func(ctx *Context, params map[string]any) bool {
		count := getInt(params, "count", 0)
		total := 0
		for _, c := range ctx.NoteCounts {
			total += c
		}
		return total >= count
	}

	ce.conditions["noteInRange"] = func(ctx *Context, params map[string]any) bool {
		minNote := getInt(params, "minNote", 0)
		maxNote := getInt(params, "maxNote", 127)
		for note, c := range ctx.NoteCounts {
			if note >= minNote && note <= maxNote && c > 0 {
				return true
			}
		}
		return false
	}

	ce.conditions["noteCountInRange"] = func(ctx *Context, params map[string]any) bool {
		minNote := getInt(params, "minNote", 0)
		maxNote := getInt(params, "maxNote", 127)
		minCount := getInt(params, "minCount", 1)
		for note, c := range ctx.NoteCounts {
			if note >= minNote && note <= maxNote && c >= minCount {
				return true
			}
		}
		return false
	}

	ce.conditions["specificNoteSequence"] = func(ctx *Context, params map[string]any) bool {
		sequence := getIntSlice(params, "sequence", nil)
		if len(sequence) == 0 || len(ctx.NoteSequence) < len(sequence) {
			return false
		}
		tail := ctx.NoteSequence[len(ctx.NoteSequence)-len(sequence):]
		for i, note := range sequence {
			if tail[i] != note {
				return false
			}
		}
		return true
	}

	ce.conditions["noteVariety"] = func(ctx *Context, params map[string]any) bool {
		minVariety := getInt(params, "minVariety", 1)
		return len(ctx.NoteCounts) >= minVariety
	}

	ce.conditions["intervalBetweenNotes"] = func(ctx *Context, params map[string]any) bool {
		interval := getInt(params, "interval", 0)
		n := len(ctx.NoteSequence)
		if n < 2 {
			return false
		}
		diff := ctx.NoteSequence[n-1] - ctx.NoteSequence[n-2]
		if diff < 0 {
			diff = -diff
		}
		return diff == interval
	}

	ce.conditions["noteRepetition"] = func(ctx *Context, params map[string]any) bool {
		repetitions := getInt(params, "repetitions", 2)
		n := len(ctx.NoteSequence)
		if n < repetitions {
			return false
		}
		last := ctx.NoteSequence[n-1]
		for _, note := range ctx.NoteSequence[n-repetitions:] {
			if note != last {
				return false
			}
		}
		return true
	}

	ce.conditions["noteProgression"] = func(ctx *Context, params map[string]any) bool {
		direction := getString(params, "direction", "ascending")
		length := getInt(params, "length", 2)
		n := len(ctx.NoteSequence)
		if n < length {
			return false
		}
		tail := ctx.NoteSequence[n-length:]
		ascending, descending := true, true
		for i := 1; i < len(tail); i++ {
			if tail[i] < tail[i-1] {
				ascending = false
			}
			if tail[i] > tail[i-1] {
				descending = false
			}
		}
		return (direction == "ascending" && ascending) ||
			(direction == "descending" && descending)
	}

	ce.conditions["chordPresence"] = func(ctx *Context, params map[string]any) bool {
		chord := getIntSlice(params, "chord", nil)
		for _, note := range chord {
			if _, ok := ctx.NoteCounts[note]; !ok {
				return false
			}
		}
		return true
	}

	ce.conditions["timeElapsed"] = func(ctx *Context, params map[string]any) bool {
		return ctx.TotalDeltaTime >= getInt64(params, "time", 0)
	}

	ce.conditions["noteRange"] = func(ctx *Context, params map[string]any) bool {
		minNote := getInt(params, "minNote", 0)
		maxNote := getInt(params, "maxNote", 127)
		if len(ctx.NoteCounts) == 0 {
			return false
		}
		lowest, highest := 128, -1
		for note := range ctx.NoteCounts {
			if note < lowest {
				lowest = note
			}
			if note > highest {
				highest = note
			}
		}
		return lowest >= minNote && highest <= maxNote
	}

	ce.conditions["rhythmicPattern"] = func(ctx *Context, params map[string]any) bool {
		pattern := getIntSlice(params, "pattern", nil)
		if len(pattern) == 0 || len(ctx.DeltaTimeSequence) < len(pattern) {
			return false
		}
		tail := ctx.DeltaTimeSequence[len(ctx.DeltaTimeSequence)-len(pattern):]
		for i, want := range pattern {
			diff := tail[i] - int64(want)
			if diff < 0 {
				diff = -diff
			}
			// 多少のタイミング誤差は許容する
			if diff > 5 {
				return false
			}
		}
		return true
	}

	ce.conditions["polyphony"] = func(ctx *Context, params map[string]any) bool {
		minVoices := getInt(params, "minVoices", 1)
		maxVoices := getInt(params, "maxVoices", 127)
		return ctx.CurrentPolyphony >= minVoices && ctx.CurrentPolyphony <= maxVoices
	}

	ce.conditions["velocityRange"] = func(ctx *Context, params map[string]any) bool {
		minVelocity := getInt(params, "minVelocity", 0)
		maxVelocity := getInt(params, "maxVelocity", 127)
		return ctx.MinVelocity >= minVelocity && ctx.MaxVelocity <= maxVelocity
	}

	ce.conditions["scaleAdherence"] = func(ctx *Context, params map[string]any) bool {
		scale := getIntSlice(params, "scale", []int{0, 2, 4, 5, 7, 9, 11})
		rootNote := getInt(params, "rootNote", 0)
		members := map[int]bool{}
		for _, iv := range scale {
			members[((rootNote+iv)%12+12)%12] = true
		}
		for note := range ctx.NoteCounts {
			if !members[((note%12)+12)%12] {
				return false
			}
		}
		return true
	}

	ce.conditions["uniqueNoteCount"] = func(ctx *Context, params map[string]any) bool {
		minUnique := getInt(params, "minUnique", 1)
		maxUnique := getInt(params, "maxUnique", 127)
		unique := len(ctx.NoteCounts)
		return unique >= minUnique && unique <= maxUnique
	}

	ce.conditions["noteRatio"] = func(ctx *Context, params map[string]any) bool {
		note1 := getInt(params, "note1", 60)
		note2 := getInt(params, "note2", 64)
		ratio := getFloat(params, "ratio", 1.0)
		epsilon := getFloat(params, "epsilon", 0.1)
		count2 := ctx.NoteCount(note2)
		if count2 == 0 {
			return false
		}
		actual := float64(ctx.NoteCount(note1)) / float64(count2)
		return math.Abs(actual-ratio) <= epsilon
	}

	ce.conditions["controllerValue"] = func(ctx *Context, params map[string]any) bool {
		controller := getInt(params, "controller", 0)
		minValue := getInt(params, "minValue", 0)
		maxValue := getInt(params, "maxValue", 127)
		value, ok := ctx.ControllerValues[controller]
		if !ok {
			return false
		}
		return value >= minValue && value <= maxValue
	}

	return ce
}
