package compiler

import (
	"errors"

	"github.com/zurustar/midiweave/pkg/event"
	"github.com/zurustar/midiweave/pkg/logger"
)

// Expander resolves a stream (an ordered JSON array of directives and
// event literals) into a flat event sequence. Directives are matched
// first; anything else is parsed as an event literal. Every directive
// sees the events accumulated by earlier directives of the same
// stream, and generated events update the observation state the
// condition evaluator reads.
type Expander struct {
	ctx        *Context
	patterns   *PatternStore
	conditions *ConditionEvaluator
}

// NewExpander wires an expander to its context, pattern store and
// condition evaluator.
func NewExpander(ctx *Context, patterns *PatternStore, conditions *ConditionEvaluator) *Expander {
	return &Expander{ctx: ctx, patterns: patterns, conditions: conditions}
}

// emit appends events to the stream and folds them into the
// observation state.
func (x *Expander) emit(stream *[]event.Event, events ...event.Event) {
	for _, ev := range events {
		x.ctx.Observe(ev)
	}
	*stream = append(*stream, events...)
}

// ExpandStream walks one stream. loopCount is 1 except when a caller
// re-enters the expander for a collapsed repetition: values >= 2 sum
// all deltas onto the first event and zero the rest (kept for
// compatibility with older documents; no directive sets it).
func (x *Expander) ExpandStream(stream []any, loopCount int) []event.Event {
	var events []event.Event

	for _, raw := range stream {
		element, ok := asObject(raw)
		if !ok {
			logger.GetLogger().Warn("stream element is not an object, skipping", "element", raw)
			continue
		}
		x.expandElement(element, &events)
	}

	if loopCount > 1 {
		var total int64
		for i := range events {
			total += events[i].Delta
			events[i].Delta = 0
		}
		if len(events) > 0 {
			events[0].Delta = total
		}
	}

	return events
}

// expandStreamValue expands a nested stream value (directive argument
// such as loop events or a pattern body).
func (x *Expander) expandStreamValue(v any) []event.Event {
	arr, ok := asArray(v)
	if !ok {
		logger.GetLogger().Warn("expected a stream array, skipping", "value", v)
		return nil
	}
	return x.ExpandStream(arr, 1)
}

// expandElement dispatches one stream element. The first matching
// directive key wins; elements with no directive key are literals.
func (x *Expander) expandElement(element map[string]any, events *[]event.Event) {
	log := logger.GetLogger()

	if def, ok := literalObject(element, "definePattern"); ok {
		name := getString(def, "name", "")
		patternEvents := x.expandStreamValue(def["events"])
		x.patterns.Define(name, patternEvents)
		return
	}

	if def, ok := literalObject(element, "articulationPattern"); ok {
		name := getString(def, "name", "default")
		var steps []ArticulationStep
		for _, pair := range getPairs(def, "pattern") {
			steps = append(steps, ArticulationStep{
				DurationMultiplier: pair[0],
				VelocityMultiplier: pair[1],
			})
		}
		x.ctx.ArticulationPatterns[name] = ArticulationPattern{Steps: steps}
		return
	}

	if def, ok := literalObject(element, "definePolyrhythm"); ok {
		name := getString(def, "name", "default")
		poly := Polyrhythm{Rhythms: getIntSlice(def, "rhythms", nil)}
		if patterns, ok := asArray(def["patterns"]); ok {
			for _, pattern := range patterns {
				poly.Patterns = append(poly.Patterns, x.expandStreamValue(pattern))
			}
		}
		x.ctx.Polyrhythms[name] = poly
		return
	}

	if gen, ok := literalObject(element, "generatePolyrhythm"); ok {
		name := getString(gen, "name", "default")
		measures := getInt(gen, "measures", 1)
		poly, ok := x.ctx.Polyrhythms[name]
		if !ok {
			log.Warn("polyrhythm not found", "name", name)
			return
		}
		x.emit(events, generatePolyrhythm(poly, measures)...)
		return
	}

	if def, ok := literalObject(element, "definePhraseWithVariation"); ok {
		name := getString(def, "name", "default")
		phrase := PhraseWithVariation{
			Base:        x.expandStreamValue(def["basePhrase"]),
			Repetitions: getInt(def, "repetitions", 4),
			Vary:        varyNotesBySemitone,
		}
		x.ctx.Phrases[name] = phrase
		return
	}

	if name, ok := element["generatePhraseWithVariation"].(string); ok {
		phrase, found := x.ctx.Phrases[name]
		if !found {
			log.Warn("phrase with variation not found", "name", name)
			return
		}
		x.emit(events, generatePhraseWithVariation(x.ctx.Rand, phrase)...)
		return
	}

	if def, ok := literalObject(element, "defineArpeggiator"); ok {
		name := getString(def, "name", "default")
		arp := Arpeggiator{
			OctaveRange:  getInt(def, "octaveRange", 1),
			NoteDuration: getInt64(def, "noteDuration", 120),
		}
		switch getString(def, "mode", "up") {
		case "down":
			arp.Mode = ArpDown
		case "updown":
			arp.Mode = ArpUpDown
		case "random":
			arp.Mode = ArpRandom
		default:
			arp.Mode = ArpUp
		}
		x.ctx.Arpeggiators[name] = arp
		return
	}

	if apply, ok := literalObject(element, "applyArpeggiator"); ok {
		name := getString(apply, "name", "default")
		chordEvents := x.expandStreamValue(apply["chord"])
		arp, found := x.ctx.Arpeggiators[name]
		if !found {
			log.Warn("arpeggiator not found", "name", name)
			return
		}
		x.emit(events, applyArpeggiator(x.ctx.Rand, chordEvents, arp)...)
		return
	}

	if def, ok := literalObject(element, "defineHarmonizationRule"); ok {
		name := getString(def, "name", "default")
		rule := HarmonizationRule{ScaleIntervals: getIntSlice(def, "scaleIntervals", nil)}
		if rows, ok := asArray(def["harmonizationIntervals"]); ok {
			for _, row := range rows {
				rule.HarmonizationIntervals = append(rule.HarmonizationIntervals, toIntSlice(row))
			}
		}
		x.ctx.HarmonizationRules[name] = rule
		return
	}

	if apply, ok := literalObject(element, "applyAdaptiveHarmonization"); ok {
		ruleName := getString(apply, "rule", "default")
		rootNote := getInt(apply, "rootNote", 60)
		rule, found := x.ctx.HarmonizationRules[ruleName]
		if !found {
			log.Warn("harmonization rule not found", "name", ruleName)
			return
		}
		x.emit(events, applyAdaptiveHarmonization(*events, rule, rootNote)...)
		return
	}

	if def, ok := literalObject(element, "defineMidiEffect"); ok {
		effect := Effect{Parameters: map[string]any{}}
		if params, ok := literalObject(def, "parameters"); ok {
			effect.Parameters = params
		}
		if getString(def, "type", "echo") == "chord_splitter" {
			effect.Type = EffectChordSplitter
		} else {
			effect.Type = EffectEcho
		}
		x.ctx.Effects = append(x.ctx.Effects, effect)
		return
	}

	if v, ok := element["applyMidiEffects"].(bool); ok {
		if v {
			for _, effect := range x.ctx.Effects {
				*events = applyMidiEffect(*events, effect)
			}
		}
		return
	}

	if def, ok := literalObject(element, "defineEventProbability"); ok {
		eventType := getString(def, "eventType", "noteOn")
		prob := EventProbability{
			Probability:  getFloat(def, "probability", 1.0),
			Modification: map[string]any{},
		}
		if mod, ok := literalObject(def, "modification"); ok {
			prob.Modification = mod
		}
		x.ctx.EventProbabilities[eventType] = prob
		return
	}

	if v, ok := element["applyEventProbabilities"]; ok {
		switch arg := v.(type) {
		case bool:
			if arg {
				applyEventProbabilities(*events, x.ctx.EventProbabilities, x.ctx.Rand)
			}
			return
		case map[string]any:
			for eventType, raw := range arg {
				probData, ok := asObject(raw)
				if !ok {
					continue
				}
				prob := EventProbability{
					Probability:  getFloat(probData, "probability", 1.0),
					Modification: map[string]any{},
				}
				if mod, ok := literalObject(probData, "modification"); ok {
					prob.Modification = mod
				}
				x.ctx.EventProbabilities[eventType] = prob
			}
			applyEventProbabilities(*events, x.ctx.EventProbabilities, x.ctx.Rand)
			return
		}
	}

	if name, ok := element["applyArticulationPattern"].(string); ok {
		pattern, found := x.ctx.ArticulationPatterns[name]
		if !found {
			log.Warn("articulation pattern not found", "name", name)
			return
		}
		applyArticulationPattern(*events, pattern)
		return
	}

	if def, ok := literalObject(element, "defineScale"); ok {
		name := getString(def, "name", "default")
		x.ctx.Scales[name] = Scale{
			Intervals: getIntSlice(def, "intervals", []int{0, 2, 4, 5, 7, 9, 11}),
			RootNote:  getInt(def, "rootNote", 60),
		}
		return
	}

	if gen, ok := literalObject(element, "generateScaleBasedMelody"); ok {
		scaleName := getString(gen, "scale", "default")
		scale, found := x.ctx.Scales[scaleName]
		if !found {
			log.Warn("scale not found", "name", scaleName)
			return
		}
		x.emit(events, generateScaleBasedMelody(x.ctx.Rand, scale,
			getInt(gen, "length", 8),
			getInt(gen, "minNote", 60),
			getInt(gen, "maxNote", 84))...)
		return
	}

	if def, ok := literalObject(element, "setTrackMute"); ok {
		track := getString(def, "track", "")
		x.ctx.TrackMutes[track] = getBool(def, "mute", false)
		return
	}

	if def, ok := literalObject(element, "parameterAutomation"); ok {
		automation := ParameterAutomation{
			Controller: getInt(def, "controllerNumber", 1),
		}
		for _, pair := range getPairs(def, "points") {
			automation.Points = append(automation.Points, AutomationPoint{
				Tick:  int64(pair[0]),
				Value: int(pair[1]),
			})
		}
		x.ctx.Automations = append(x.ctx.Automations, automation)
		return
	}

	if v, ok := element["applyParameterAutomation"].(bool); ok {
		if v {
			*events = applyParameterAutomation(*events, x.ctx.Automations)
		}
		return
	}

	if gen, ok := literalObject(element, "generateAdaptiveHarmony"); ok {
		scaleName := getString(gen, "scale", "default")
		interval := getInt(gen, "interval", 4)
		scale, found := x.ctx.Scales[scaleName]
		if !found {
			log.Warn("scale not found for adaptive harmony", "name", scaleName)
			return
		}
		x.emit(events, generateAdaptiveHarmony(*events, scale, interval)...)
		return
	}

	if points, ok := asArray(element["defineTempoMap"]); ok {
		for _, raw := range points {
			point, ok := asObject(raw)
			if !ok {
				continue
			}
			x.ctx.TempoMap.Points = append(x.ctx.TempoMap.Points, TempoPoint{
				Tick:                   getInt64(point, "tick", 0),
				MicrosecondsPerQuarter: uint32(getInt(point, "microsecondsPerQuarter", 500000)),
			})
		}
		x.ctx.SortTempoMap()
		return
	}

	if v, ok := element["applyTempoMap"].(bool); ok {
		if v {
			*events = applyTempoMap(*events, x.ctx.TempoMap)
		}
		return
	}

	if def, ok := literalObject(element, "setRandomizationParams"); ok {
		x.ctx.Randomization = RandomizationParams{
			VelocityRange:   getInt(def, "velocityRange", 10),
			TimingRange:     getInt(def, "timingRange", 5),
			PitchRange:      getInt(def, "pitchRange", 2),
			NoteProbability: getFloat(def, "noteProbability", 1.0),
		}
		return
	}

	if v, ok := element["applyRandomization"]; ok {
		switch arg := v.(type) {
		case bool:
			if arg {
				*events = applyRandomization(*events, x.ctx.Randomization, x.ctx.Rand)
			}
			return
		case map[string]any:
			applyControlledRandomization(*events, x.ctx.Rand,
				getInt(arg, "velocityRange", 10),
				getInt(arg, "timingRange", 5))
			return
		}
	}

	if def, ok := literalObject(element, "defineChordProgression"); ok {
		name := getString(def, "name", "default")
		progression := ChordProgression{RootNote: getInt(def, "rootNote", 60)}
		if chords, ok := asArray(def["chords"]); ok {
			for _, raw := range chords {
				chordDef, ok := asObject(raw)
				if !ok {
					continue
				}
				progression.Chords = append(progression.Chords, Chord{
					Notes:    getIntSlice(chordDef, "notes", nil),
					Duration: getInt64(chordDef, "duration", 0),
				})
			}
		}
		x.ctx.ChordProgressions[name] = progression
		return
	}

	if exp, ok := literalObject(element, "expandChordProgression"); ok {
		name := getString(exp, "name", "default")
		arpeggiate := getBool(exp, "arpeggiate", false)
		progression, found := x.ctx.ChordProgressions[name]
		if !found {
			log.Warn("chord progression not found", "name", name)
			return
		}
		x.emit(events, expandChordProgression(progression, arpeggiate)...)
		return
	}

	if def, ok := literalObject(element, "grooveTemplate"); ok {
		name := getString(def, "name", "default")
		var steps []GrooveStep
		for _, pair := range getPairs(def, "steps") {
			steps = append(steps, GrooveStep{
				TimingOffset:   int64(pair[0]),
				VelocityOffset: int(pair[1]),
			})
		}
		x.ctx.GrooveTemplates[name] = GrooveTemplate{Steps: steps}
		return
	}

	if name, ok := element["applyGrooveTemplate"].(string); ok {
		groove, found := x.ctx.GrooveTemplates[name]
		if !found {
			log.Warn("groove template not found", "name", name)
			return
		}
		applyGrooveTemplate(*events, groove)
		return
	}

	if use, ok := literalObject(element, "usePattern"); ok {
		name := getString(use, "name", "")
		repetitions := getInt(use, "repetitions", 1)
		patternEvents, err := x.patterns.Get(name, repetitions)
		if err != nil {
			if errors.Is(err, ErrPatternNotFound) {
				log.Warn("pattern not found", "name", name)
			} else {
				log.Warn("failed to use pattern", "name", name, "error", err)
			}
			return
		}
		x.emit(events, patternEvents...)
		return
	}

	if def, ok := literalObject(element, "tempoChange"); ok {
		x.ctx.TempoChanges = append(x.ctx.TempoChanges, TempoChange{
			DeltaTime:              getInt64(def, "deltaTime", 0),
			MicrosecondsPerQuarter: uint32(getInt(def, "microsecondsPerQuarter", 500000)),
		})
		return
	}

	if def, ok := literalObject(element, "velocityCurve"); ok {
		name := getString(def, "name", "default")
		x.ctx.VelocityCurves[name] = VelocityCurve{
			Velocities: getIntSlice(def, "velocities", []int{64, 96, 80, 112}),
		}
		return
	}

	if name, ok := element["applyVelocityCurve"].(string); ok {
		curve, found := x.ctx.VelocityCurves[name]
		if !found {
			log.Warn("velocity curve not found", "name", name)
			return
		}
		applyVelocityCurve(*events, curve)
		return
	}

	if cond, ok := literalObject(element, "conditional"); ok {
		x.expandConditional(cond, events)
		return
	}

	if loop, ok := literalObject(element, "loop"); ok {
		count := getInt(loop, "count", 1)
		for i := 0; i < count; i++ {
			// 再帰展開の中で観測済みなのでそのまま連結する
			*events = append(*events, x.expandStreamValue(loop["events"])...)
		}
		return
	}

	// Not a directive: parse as an event literal.
	ev, ok := parseLiteral(element)
	if !ok {
		log.Warn("unknown or unexpected event type or format, skipping", "element", element)
		return
	}
	x.emit(events, ev)
}

// expandConditional evaluates a condition and expands the chosen
// branch. An unknown condition collapses to the ifFalse branch, or to
// nothing when absent.
func (x *Expander) expandConditional(cond map[string]any, events *[]event.Event) {
	log := logger.GetLogger()

	condition, ok := literalObject(cond, "condition")
	if !ok {
		log.Warn("conditional without condition object, skipping")
		return
	}
	condType := getString(condition, "type", "")
	params, _ := literalObject(condition, "parameters")
	if params == nil {
		params = map[string]any{}
	}

	result, err := x.conditions.Evaluate(condType, x.ctx, params)
	if err != nil {
		log.Warn("condition evaluation failed", "type", condType, "error", err)
		result = false
	}

	if result {
		*events = append(*events, x.expandStreamValue(cond["ifTrue"])...)
	} else if branch, ok := cond["ifFalse"]; ok {
		*events = append(*events, x.expandStreamValue(branch)...)
	}
}

// FlushTempoChanges drains deferred tempoChange directives into
// setTempo events appended to the stream that queued them.
func (x *Expander) FlushTempoChanges(events *[]event.Event) {
	for _, tc := range x.ctx.TempoChanges {
		x.emit(events, event.Event{
			Delta:   tc.DeltaTime,
			Payload: event.SetTempo{MicrosecondsPerQuarter: tc.MicrosecondsPerQuarter},
		})
	}
	x.ctx.TempoChanges = nil
}
