package smf

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zurustar/midiweave/pkg/event"
	"github.com/zurustar/midiweave/pkg/logger"
)

// Writer serializes tracks of events into an SMF byte stream. Track
// chunks are buffered in memory so the chunk length can be written
// up front; no running-status compression is performed, every event
// carries its full status byte.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the MThd chunk: format, track count and division
// as big-endian 16-bit words after the fixed length 6.
func (wr *Writer) WriteHeader(format, numTracks, division uint16) error {
	buf := make([]byte, 0, 14)
	buf = append(buf, 'M', 'T', 'h', 'd')
	buf = binary.BigEndian.AppendUint32(buf, 6)
	buf = binary.BigEndian.AppendUint16(buf, format)
	buf = binary.BigEndian.AppendUint16(buf, numTracks)
	buf = binary.BigEndian.AppendUint16(buf, division)
	if _, err := wr.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// WriteTrack writes one MTrk chunk. Each event contributes its delta as
// a variable-length quantity followed by its wire-format body. Silent
// and unknown kinds write no bytes; their delta time carries over to
// the next written event so the track keeps its timing.
func (wr *Writer) WriteTrack(events []event.Event) error {
	var body []byte
	var pending int64
	for _, ev := range events {
		delta := ev.Delta
		if delta < 0 {
			delta = 0
		}
		delta += pending

		encoded := appendEvent(nil, ev)
		if len(encoded) == 0 {
			pending = delta
			continue
		}
		pending = 0

		if delta > MaxVLQ {
			logger.GetLogger().Warn("delta exceeds variable-length range, clamping",
				"delta", delta, "kind", ev.Kind().String())
			delta = MaxVLQ
		}
		body, _ = AppendVLQ(body, uint32(delta))
		body = append(body, encoded...)
	}

	buf := make([]byte, 0, 8+len(body))
	buf = append(buf, 'M', 'T', 'r', 'k')
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(body)))
	buf = append(buf, body...)
	if _, err := wr.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write track: %w", err)
	}
	return nil
}

func appendMetaString(dst []byte, metaType byte, data []byte) []byte {
	dst = append(dst, 0xFF, metaType)
	dst, _ = AppendVLQ(dst, uint32(len(data)))
	return append(dst, data...)
}

// appendEvent appends the wire form of one event. The kind table
// mirrors the JSON grammar one to one.
func appendEvent(dst []byte, ev event.Event) []byte {
	switch p := ev.Payload.(type) {
	case event.NoteOn:
		return append(dst, 0x90|p.Channel&0x0F, byte(p.Note), byte(p.Velocity))
	case event.NoteOff:
		return append(dst, 0x80|p.Channel&0x0F, byte(p.Note), byte(p.Velocity))
	case event.SilentNoteOn, event.SilentNoteOff:
		// Muted notes hold their time but write nothing.
		return dst
	case event.PolyphonicKeyPressure:
		return append(dst, 0xA0|p.Channel&0x0F, byte(p.Note), byte(p.Pressure))
	case event.ControlChange:
		return append(dst, 0xB0|p.Channel&0x0F, byte(p.Controller), byte(p.Value))
	case event.ProgramChange:
		return append(dst, 0xC0|p.Channel&0x0F, byte(p.Program))
	case event.ChannelPressure:
		return append(dst, 0xD0|p.Channel&0x0F, byte(p.Pressure))
	case event.PitchBend:
		// Signed, zero-centered value becomes a 14-bit word, LSB first.
		adjusted := p.Value + 8192
		if adjusted < 0 {
			adjusted = 0
		}
		if adjusted > 16383 {
			adjusted = 16383
		}
		return append(dst, 0xE0|p.Channel&0x0F, byte(adjusted&0x7F), byte(adjusted>>7&0x7F))
	case event.SequenceNumber:
		return append(dst, 0xFF, 0x00, 0x02, byte(p.Number>>8), byte(p.Number))
	case event.MetaText:
		return appendMetaString(dst, p.Subtype, p.Data)
	case event.TrackName:
		return appendMetaString(dst, 0x03, []byte(p.Text))
	case event.Marker:
		return appendMetaString(dst, 0x06, []byte(p.Text))
	case event.CuePoint:
		return appendMetaString(dst, 0x07, []byte(p.Text))
	case event.DeviceName:
		return appendMetaString(dst, 0x09, []byte(p.Text))
	case event.MIDIChannelPrefix:
		return append(dst, 0xFF, 0x20, 0x01, byte(p.Channel))
	case event.MIDIPort:
		return append(dst, 0xFF, 0x21, 0x01, byte(p.Port))
	case event.EndOfTrack:
		return append(dst, 0xFF, 0x2F, 0x00)
	case event.SetTempo:
		t := p.MicrosecondsPerQuarter
		return append(dst, 0xFF, 0x51, 0x03, byte(t>>16), byte(t>>8), byte(t))
	case event.SMPTEOffset:
		return append(dst, 0xFF, 0x54, 0x05,
			byte(p.Hour), byte(p.Minute), byte(p.Second), byte(p.Frame), byte(p.SubFrame))
	case event.TimeSignature:
		return append(dst, 0xFF, 0x58, 0x04,
			byte(p.Numerator), byte(p.Denominator), byte(p.Metronome), byte(p.ThirtySeconds))
	case event.KeySignature:
		return append(dst, 0xFF, 0x59, 0x02, byte(p.Key), byte(p.Scale))
	case event.SequencerSpecific:
		dst = append(dst, 0xFF, 0x7F)
		dst, _ = AppendVLQ(dst, uint32(len(p.Data)))
		return append(dst, p.Data...)
	case event.SysEx:
		dst = append(dst, 0xF0)
		dst, _ = AppendVLQ(dst, uint32(len(p.Data)))
		dst = append(dst, p.Data...)
		return append(dst, 0xF7)
	case event.MTCQuarterFrame:
		return append(dst, 0xF1, byte(p.Data))
	case event.SongPositionPointer:
		return append(dst, 0xF2, byte(p.Position&0x7F), byte(p.Position>>7&0x7F))
	case event.SongSelect:
		return append(dst, 0xF3, byte(p.Song))
	case event.TuneRequest:
		return append(dst, 0xF6)
	case event.TimingClock:
		return append(dst, 0xF8)
	case event.Start:
		return append(dst, 0xFA)
	case event.Continue:
		return append(dst, 0xFB)
	case event.Stop:
		return append(dst, 0xFC)
	case event.ActiveSensing:
		return append(dst, 0xFE)
	case event.SystemReset:
		return append(dst, 0xFF)
	default:
		logger.GetLogger().Warn("unknown event kind, nothing written", "kind", ev.Kind().String())
		return dst
	}
}
