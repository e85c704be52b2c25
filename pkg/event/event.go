// Package event defines the tagged MIDI event model shared by the
// compiler and the SMF codec. An Event is a delta time plus a typed
// payload; the payload's concrete type is the discriminator, so the
// encoder can switch exhaustively instead of matching kind strings.
package event

// Kind identifies the concrete payload type of an Event.
type Kind int

const (
	KindUnknown Kind = iota

	// Channel voice messages
	KindNoteOn
	KindNoteOff
	KindPolyphonicKeyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend

	// Meta events
	KindSequenceNumber
	KindMetaText
	KindTrackName
	KindMarker
	KindCuePoint
	KindDeviceName
	KindMIDIChannelPrefix
	KindMIDIPort
	KindEndOfTrack
	KindSetTempo
	KindSMPTEOffset
	KindTimeSignature
	KindKeySignature
	KindSequencerSpecific

	// System exclusive
	KindSysEx

	// System common / realtime
	KindMTCQuarterFrame
	KindSongPositionPointer
	KindSongSelect
	KindTuneRequest
	KindTimingClock
	KindStart
	KindContinue
	KindStop
	KindActiveSensing
	KindSystemReset

	// Neutered note events produced by track muting. They occupy their
	// delta time but are never written to the wire.
	KindSilentNoteOn
	KindSilentNoteOff
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindNoteOn:                "noteOn",
	KindNoteOff:               "noteOff",
	KindPolyphonicKeyPressure: "polyphonicKeyPressure",
	KindControlChange:         "controlChange",
	KindProgramChange:         "programChange",
	KindChannelPressure:       "channelPressure",
	KindPitchBend:             "pitchBend",
	KindSequenceNumber:        "sequenceNumber",
	KindMetaText:              "metaText",
	KindTrackName:             "trackName",
	KindMarker:                "marker",
	KindCuePoint:              "cuePoint",
	KindDeviceName:            "deviceName",
	KindMIDIChannelPrefix:     "midiChannelPrefix",
	KindMIDIPort:              "midiPort",
	KindEndOfTrack:            "endOfTrack",
	KindSetTempo:              "setTempo",
	KindSMPTEOffset:           "smpteOffset",
	KindTimeSignature:         "timeSignature",
	KindKeySignature:          "keySignature",
	KindSequencerSpecific:     "sequencerSpecific",
	KindSysEx:                 "sysex",
	KindMTCQuarterFrame:       "midiTimeCodeQuarterFrame",
	KindSongPositionPointer:   "songPositionPointer",
	KindSongSelect:            "songSelect",
	KindTuneRequest:           "tuneRequest",
	KindTimingClock:           "timingClock",
	KindStart:                 "start",
	KindContinue:              "continue",
	KindStop:                  "stop",
	KindActiveSensing:         "activeSensing",
	KindSystemReset:           "systemReset",
	KindSilentNoteOn:          "silentNoteOn",
	KindSilentNoteOff:         "silentNoteOff",
}

// String returns the JSON-facing name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Payload is implemented by every concrete event payload.
type Payload interface {
	Kind() Kind
}

// Event is one MIDI or meta event: ticks since the previous event plus
// a typed payload. Equality is structural.
type Event struct {
	Delta   int64
	Payload Payload
}

// Kind returns the payload's kind, or KindUnknown for a nil payload.
func (e Event) Kind() Kind {
	if e.Payload == nil {
		return KindUnknown
	}
	return e.Payload.Kind()
}

// NoteOn starts a note.
type NoteOn struct {
	Channel  uint8
	Note     int
	Velocity int
}

// NoteOff ends a note.
type NoteOff struct {
	Channel  uint8
	Note     int
	Velocity int
}

// SilentNoteOn is a muted NoteOn: it keeps its delta but is not encoded.
type SilentNoteOn struct {
	Channel  uint8
	Note     int
	Velocity int
}

// SilentNoteOff is a muted NoteOff.
type SilentNoteOff struct {
	Channel  uint8
	Note     int
	Velocity int
}

// PolyphonicKeyPressure is per-note aftertouch.
type PolyphonicKeyPressure struct {
	Channel  uint8
	Note     int
	Pressure int
}

// ControlChange sets a controller value.
type ControlChange struct {
	Channel    uint8
	Controller int
	Value      int
}

// ProgramChange selects a program.
type ProgramChange struct {
	Channel uint8
	Program int
}

// ChannelPressure is channel-wide aftertouch.
type ChannelPressure struct {
	Channel  uint8
	Pressure int
}

// PitchBend carries a signed, zero-centered bend value in [-8192, 8191].
// The wire form re-centers it to 14 bits by adding 8192.
type PitchBend struct {
	Channel uint8
	Value   int
}

// SequenceNumber is the FF 00 meta event.
type SequenceNumber struct {
	Number int
}

// MetaText is any text-class meta event addressed by subtype byte
// (0x01 text, 0x02 copyright, 0x04 instrument name, 0x05 lyric,
// 0x08 program name, or whatever subtype a decoded file carried).
// Data holds the raw byte image of the text.
type MetaText struct {
	Subtype uint8
	Data    []byte
}

// TrackName is the FF 03 meta event.
type TrackName struct {
	Text string
}

// Marker is the FF 06 meta event.
type Marker struct {
	Text string
}

// CuePoint is the FF 07 meta event.
type CuePoint struct {
	Text string
}

// DeviceName is the FF 09 meta event.
type DeviceName struct {
	Text string
}

// MIDIChannelPrefix is the FF 20 meta event.
type MIDIChannelPrefix struct {
	Channel int
}

// MIDIPort is the FF 21 meta event.
type MIDIPort struct {
	Port int
}

// EndOfTrack is the FF 2F meta event; the encoder trusts the caller to
// place it last.
type EndOfTrack struct{}

// SetTempo is the FF 51 meta event.
type SetTempo struct {
	MicrosecondsPerQuarter uint32
}

// SMPTEOffset is the FF 54 meta event.
type SMPTEOffset struct {
	Hour     int
	Minute   int
	Second   int
	Frame    int
	SubFrame int
}

// TimeSignature is the FF 58 meta event. All four bytes are written
// verbatim; the denominator is NOT log-encoded on output.
type TimeSignature struct {
	Numerator     int
	Denominator   int
	Metronome     int
	ThirtySeconds int
}

// KeySignature is the FF 59 meta event. Key is -7..7 (flats/sharps),
// Scale is 0 for major, 1 for minor.
type KeySignature struct {
	Key   int
	Scale int
}

// SequencerSpecific is the FF 7F meta event.
type SequencerSpecific struct {
	Data []byte
}

// SysEx is an F0-framed system exclusive message. Data excludes the
// framing bytes; the encoder writes F0, a length, the data, then F7.
type SysEx struct {
	Data []byte
}

// MTCQuarterFrame is the F1 system common message.
type MTCQuarterFrame struct {
	Data int
}

// SongPositionPointer is the F2 system common message (14-bit value).
type SongPositionPointer struct {
	Position int
}

// SongSelect is the F3 system common message.
type SongSelect struct {
	Song int
}

// TuneRequest is the F6 system common message.
type TuneRequest struct{}

// TimingClock is the F8 realtime message.
type TimingClock struct{}

// Start is the FA realtime message.
type Start struct{}

// Continue is the FB realtime message.
type Continue struct{}

// Stop is the FC realtime message.
type Stop struct{}

// ActiveSensing is the FE realtime message.
type ActiveSensing struct{}

// SystemReset is the FF realtime message. Inside an SMF track the FF
// status byte introduces meta events instead, so this only appears when
// a document asks for it explicitly.
type SystemReset struct{}

func (NoteOn) Kind() Kind                { return KindNoteOn }
func (NoteOff) Kind() Kind               { return KindNoteOff }
func (SilentNoteOn) Kind() Kind          { return KindSilentNoteOn }
func (SilentNoteOff) Kind() Kind         { return KindSilentNoteOff }
func (PolyphonicKeyPressure) Kind() Kind { return KindPolyphonicKeyPressure }
func (ControlChange) Kind() Kind         { return KindControlChange }
func (ProgramChange) Kind() Kind         { return KindProgramChange }
func (ChannelPressure) Kind() Kind       { return KindChannelPressure }
func (PitchBend) Kind() Kind             { return KindPitchBend }
func (SequenceNumber) Kind() Kind        { return KindSequenceNumber }
func (MetaText) Kind() Kind              { return KindMetaText }
func (TrackName) Kind() Kind             { return KindTrackName }
func (Marker) Kind() Kind                { return KindMarker }
func (CuePoint) Kind() Kind              { return KindCuePoint }
func (DeviceName) Kind() Kind            { return KindDeviceName }
func (MIDIChannelPrefix) Kind() Kind     { return KindMIDIChannelPrefix }
func (MIDIPort) Kind() Kind              { return KindMIDIPort }
func (EndOfTrack) Kind() Kind            { return KindEndOfTrack }
func (SetTempo) Kind() Kind              { return KindSetTempo }
func (SMPTEOffset) Kind() Kind           { return KindSMPTEOffset }
func (TimeSignature) Kind() Kind         { return KindTimeSignature }
func (KeySignature) Kind() Kind          { return KindKeySignature }
func (SequencerSpecific) Kind() Kind     { return KindSequencerSpecific }
func (SysEx) Kind() Kind                 { return KindSysEx }
func (MTCQuarterFrame) Kind() Kind       { return KindMTCQuarterFrame }
func (SongPositionPointer) Kind() Kind   { return KindSongPositionPointer }
func (SongSelect) Kind() Kind            { return KindSongSelect }
func (TuneRequest) Kind() Kind           { return KindTuneRequest }
func (TimingClock) Kind() Kind           { return KindTimingClock }
func (Start) Kind() Kind                 { return KindStart }
func (Continue) Kind() Kind              { return KindContinue }
func (Stop) Kind() Kind                  { return KindStop }
func (ActiveSensing) Kind() Kind         { return KindActiveSensing }
func (SystemReset) Kind() Kind           { return KindSystemReset }

// ClampVelocity bounds a note velocity to the playable 1..127 range.
func ClampVelocity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}

// ClampNote bounds a note number to 0..127.
func ClampNote(n int) int {
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return n
}

// ClampData bounds a 7-bit data byte to 0..127.
func ClampData(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
