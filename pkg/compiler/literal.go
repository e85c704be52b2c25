package compiler

import (
	"encoding/hex"

	"github.com/zurustar/midiweave/pkg/event"
	"github.com/zurustar/midiweave/pkg/logger"
)

// metaTextAliases maps plain string keys the decompiler emits for
// text-class meta events onto their subtype bytes.
var metaTextAliases = map[string]uint8{
	"text":            0x01,
	"copyrightNotice": 0x02,
	"instrumentName":  0x04,
	"lyric":           0x05,
	"programName":     0x08,
}

// parseLiteral materializes one event literal. The element is matched
// against the kind keys in a fixed order; ok is false when no kind key
// is present or a matched payload is unusable, and the element should
// be skipped with a warning.
func parseLiteral(element map[string]any) (event.Event, bool) {
	ev := event.Event{Delta: getInt64(element, "delta", 0)}
	channel := uint8(getInt(element, "channel", 0) & 0x0F)

	if obj, ok := literalObject(element, "noteOn"); ok {
		ev.Payload = event.NoteOn{
			Channel:  channel,
			Note:     getInt(obj, "noteNumber", 0),
			Velocity: getInt(obj, "velocity", 0),
		}
		return ev, true
	}
	if obj, ok := literalObject(element, "noteOff"); ok {
		ev.Payload = event.NoteOff{
			Channel:  channel,
			Note:     getInt(obj, "noteNumber", 0),
			Velocity: getInt(obj, "velocity", 0),
		}
		return ev, true
	}
	if text, ok := textPayload(element, "marker"); ok {
		ev.Payload = event.Marker{Text: text}
		return ev, true
	}
	if obj, ok := literalObject(element, "controlChange"); ok {
		controller := getInt(obj, "controllerNumber", getInt(obj, "type", 0))
		ev.Payload = event.ControlChange{
			Channel:    channel,
			Controller: controller,
			Value:      getInt(obj, "value", 0),
		}
		return ev, true
	}
	if obj, ok := literalObject(element, "programChange"); ok {
		ev.Payload = event.ProgramChange{
			Channel: channel,
			Program: getInt(obj, "programNumber", 0),
		}
		return ev, true
	}
	if obj, ok := literalObject(element, "setTempo"); ok {
		ev.Payload = event.SetTempo{
			MicrosecondsPerQuarter: uint32(getInt(obj, "microsecondsPerQuarter", 500000)),
		}
		return ev, true
	}
	if v, ok := element["midiChannelPrefix"]; ok {
		if n, ok := toInt(v); ok {
			ev.Payload = event.MIDIChannelPrefix{Channel: n}
			return ev, true
		}
		return ev, false
	}
	if obj, ok := literalObject(element, "timeSignature"); ok {
		ev.Payload = event.TimeSignature{
			Numerator:     getInt(obj, "numerator", 4),
			Denominator:   getInt(obj, "denominator", 4),
			Metronome:     getInt(obj, "metronome", 24),
			ThirtySeconds: getInt(obj, "thirtyseconds", 8),
		}
		return ev, true
	}
	if obj, ok := literalObject(element, "polyphonicKeyPressure"); ok {
		ev.Payload = event.PolyphonicKeyPressure{
			Channel:  channel,
			Note:     getInt(obj, "noteNumber", 0),
			Pressure: getInt(obj, "pressure", 0),
		}
		return ev, true
	}
	if obj, ok := literalObject(element, "keySignature"); ok {
		scale := 0
		switch s := obj["scale"].(type) {
		case string:
			if s == "minor" {
				scale = 1
			}
		default:
			scale = getInt(obj, "scale", 0)
		}
		ev.Payload = event.KeySignature{Key: getInt(obj, "key", 0), Scale: scale}
		return ev, true
	}
	if v, ok := element["sysex"]; ok {
		switch payload := v.(type) {
		case map[string]any:
			ev.Payload = event.SysEx{Data: getByteSlice(payload, "data")}
			return ev, true
		case string:
			data, err := hex.DecodeString(payload)
			if err != nil {
				logger.GetLogger().Warn("sysex hex string is invalid", "error", err)
				return ev, false
			}
			ev.Payload = event.SysEx{Data: data}
			return ev, true
		default:
			return ev, false
		}
	}
	if v, ok := element["channelPrefix"]; ok {
		if n, ok := toInt(v); ok {
			ev.Payload = event.MIDIChannelPrefix{Channel: n}
			return ev, true
		}
		return ev, false
	}
	if v, ok := element["midiPort"]; ok {
		if n, ok := toInt(v); ok {
			ev.Payload = event.MIDIPort{Port: n}
			return ev, true
		}
		return ev, false
	}
	if _, ok := element["endOfTrack"]; ok {
		ev.Payload = event.EndOfTrack{}
		return ev, true
	}
	if v, ok := element["pitchBend"]; ok {
		value := 0
		switch bend := v.(type) {
		case map[string]any:
			value = getInt(bend, "value", 0)
		default:
			if n, ok := toInt(bend); ok {
				value = n
			}
		}
		ev.Payload = event.PitchBend{Channel: channel, Value: value}
		return ev, true
	}
	if text, ok := textPayload(element, "trackName"); ok {
		ev.Payload = event.TrackName{Text: text}
		return ev, true
	}
	if obj, ok := literalObject(element, "channelPressure"); ok {
		ev.Payload = event.ChannelPressure{
			Channel:  channel,
			Pressure: getInt(obj, "pressure", 0),
		}
		return ev, true
	}
	if obj, ok := literalObject(element, "metaText"); ok {
		ev.Payload = event.MetaText{
			Subtype: uint8(getInt(obj, "subtype", 0x01)),
			Data:    []byte(getString(obj, "text", "")),
		}
		return ev, true
	}
	for key, subtype := range metaTextAliases {
		if s, ok := element[key].(string); ok {
			ev.Payload = event.MetaText{Subtype: subtype, Data: []byte(s)}
			return ev, true
		}
	}
	if obj, ok := literalObject(element, "sequencerSpecific"); ok {
		ev.Payload = event.SequencerSpecific{Data: getByteSlice(obj, "data")}
		return ev, true
	}
	if obj, ok := literalObject(element, "smpteOffset"); ok {
		ev.Payload = event.SMPTEOffset{
			Hour:     getInt(obj, "hour", 0),
			Minute:   getInt(obj, "minute", 0),
			Second:   getInt(obj, "second", 0),
			Frame:    getInt(obj, "frame", 0),
			SubFrame: getInt(obj, "subFrame", 0),
		}
		return ev, true
	}
	if text, ok := textPayload(element, "cuePoint"); ok {
		ev.Payload = event.CuePoint{Text: text}
		return ev, true
	}
	if text, ok := textPayload(element, "deviceName"); ok {
		ev.Payload = event.DeviceName{Text: text}
		return ev, true
	}
	if obj, ok := literalObject(element, "channelAftertouch"); ok {
		// 旧来の表記。ワイヤ形式はpolyphonicKeyPressureと同一
		ev.Payload = event.PolyphonicKeyPressure{
			Channel:  channel,
			Note:     getInt(obj, "noteNumber", 0),
			Pressure: getInt(obj, "pressure", 0),
		}
		return ev, true
	}
	if v, ok := element["songPositionPointer"]; ok {
		if n, ok := toInt(v); ok {
			ev.Payload = event.SongPositionPointer{Position: n}
			return ev, true
		}
		return ev, false
	}
	if s, ok := element["sequencerSpecificData"].(string); ok {
		ev.Payload = event.SequencerSpecific{Data: []byte(s)}
		return ev, true
	}
	if v, ok := element["songSelect"]; ok {
		switch sel := v.(type) {
		case map[string]any:
			ev.Payload = event.SongSelect{Song: getInt(sel, "songNumber", 0)}
		default:
			n, _ := toInt(sel)
			ev.Payload = event.SongSelect{Song: n}
		}
		return ev, true
	}
	if v, ok := element["sequenceNumber"]; ok {
		if n, ok := toInt(v); ok {
			ev.Payload = event.SequenceNumber{Number: n}
			return ev, true
		}
		return ev, false
	}
	if obj, ok := literalObject(element, "midiTimeCodeQuarterFrame"); ok {
		ev.Payload = event.MTCQuarterFrame{Data: getInt(obj, "data", 0)}
		return ev, true
	}
	if obj, ok := literalObject(element, "unknownMeta"); ok {
		ev.Payload = event.MetaText{
			Subtype: uint8(getInt(obj, "type", 0)),
			Data:    getByteSlice(obj, "data"),
		}
		return ev, true
	}
	if _, ok := element["tuneRequest"]; ok {
		ev.Payload = event.TuneRequest{}
		return ev, true
	}
	if _, ok := element["timingClock"]; ok {
		ev.Payload = event.TimingClock{}
		return ev, true
	}
	if _, ok := element["start"]; ok {
		ev.Payload = event.Start{}
		return ev, true
	}
	if _, ok := element["continue"]; ok {
		ev.Payload = event.Continue{}
		return ev, true
	}
	if _, ok := element["stop"]; ok {
		ev.Payload = event.Stop{}
		return ev, true
	}
	if _, ok := element["activeSensing"]; ok {
		ev.Payload = event.ActiveSensing{}
		return ev, true
	}
	if _, ok := element["systemReset"]; ok {
		ev.Payload = event.SystemReset{}
		return ev, true
	}

	return ev, false
}

// literalObject fetches element[key] when it is a JSON object.
func literalObject(element map[string]any, key string) (map[string]any, bool) {
	v, ok := element[key]
	if !ok {
		return nil, false
	}
	return asObject(v)
}

// textPayload accepts both the {"text": "..."} object form and a bare
// string for text-carrying meta kinds.
func textPayload(element map[string]any, key string) (string, bool) {
	v, ok := element[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case map[string]any:
		return getString(t, "text", ""), true
	case string:
		return t, true
	default:
		return "", false
	}
}
