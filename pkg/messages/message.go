// Package messages implements the MIDI message model shared by the serial
// and USB-MIDI codecs. A Message is a fixed-size value; construction
// validates the MIDI 1.0 data ranges once so the codecs never re-check them.
package messages

import (
	"bytes"
	"fmt"
)

// Kind identifies the MIDI message type carried by a Message.
type Kind uint8

const (
	// KindInvalid is the zero value. Parsers return it when a fed byte
	// completes no message.
	KindInvalid Kind = iota

	// Channel Voice messages.
	KindNoteOff
	KindNoteOn
	KindPolyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend

	// System Common messages.
	KindQuarterFrame
	KindSongPosition
	KindSongSelect
	KindTuneRequest

	// System Real-Time messages.
	KindTimingClock
	KindStart
	KindContinue
	KindStop
	KindActiveSensing
	KindSystemReset

	// System Exclusive.
	KindSysEx
)

func (k Kind) String() string {
	switch k {
	case KindNoteOff:
		return "NoteOff"
	case KindNoteOn:
		return "NoteOn"
	case KindPolyPressure:
		return "PolyPressure"
	case KindControlChange:
		return "ControlChange"
	case KindProgramChange:
		return "ProgramChange"
	case KindChannelPressure:
		return "ChannelPressure"
	case KindPitchBend:
		return "PitchBend"
	case KindQuarterFrame:
		return "QuarterFrame"
	case KindSongPosition:
		return "SongPosition"
	case KindSongSelect:
		return "SongSelect"
	case KindTuneRequest:
		return "TuneRequest"
	case KindTimingClock:
		return "TimingClock"
	case KindStart:
		return "Start"
	case KindContinue:
		return "Continue"
	case KindStop:
		return "Stop"
	case KindActiveSensing:
		return "ActiveSensing"
	case KindSystemReset:
		return "SystemReset"
	case KindSysEx:
		return "SysEx"
	default:
		return "Invalid"
	}
}

// IsChannelVoice reports whether the kind carries a channel number.
func (k Kind) IsChannelVoice() bool {
	return k >= KindNoteOff && k <= KindPitchBend
}

// IsSystemCommon reports whether the kind is a System Common message.
func (k Kind) IsSystemCommon() bool {
	return k >= KindQuarterFrame && k <= KindTuneRequest
}

// IsRealTime reports whether the kind is a System Real-Time message.
func (k Kind) IsRealTime() bool {
	return k >= KindTimingClock && k <= KindSystemReset
}

// Message is a single MIDI message. The zero value has KindInvalid and
// represents "no message". All constructors validate their arguments and
// return ErrInvalidData on a range violation, so a non-invalid Message
// always satisfies the MIDI 1.0 data invariants.
//
// SysEx messages hold a reference to the payload bytes they were built
// from. Messages emitted by a parser reference that parser's SysExBuffer
// and stay valid only until the parser is fed again or reset.
type Message struct {
	kind    Kind
	channel uint8
	d1, d2  uint8
	data    []byte
}

func channelMessage(kind Kind, channel, d1, d2 uint8) (Message, error) {
	if channel > MaxChannel || d1 > MaxValue || d2 > MaxValue {
		return Message{}, ErrInvalidData
	}
	return Message{kind: kind, channel: channel, d1: d1, d2: d2}, nil
}

// NoteOff returns a Note Off message. A velocity of zero is legal and
// distinct from the Note On velocity-zero convention.
func NoteOff(channel, key, velocity uint8) (Message, error) {
	return channelMessage(KindNoteOff, channel, key, velocity)
}

// NoteOn returns a Note On message.
func NoteOn(channel, key, velocity uint8) (Message, error) {
	return channelMessage(KindNoteOn, channel, key, velocity)
}

// PolyPressure returns a Polyphonic Key Pressure (aftertouch) message.
func PolyPressure(channel, key, pressure uint8) (Message, error) {
	return channelMessage(KindPolyPressure, channel, key, pressure)
}

// ControlChange returns a Control Change message.
func ControlChange(channel, controller, value uint8) (Message, error) {
	return channelMessage(KindControlChange, channel, controller, value)
}

// ProgramChange returns a Program Change message.
func ProgramChange(channel, program uint8) (Message, error) {
	return channelMessage(KindProgramChange, channel, program, 0)
}

// ChannelPressure returns a Channel Pressure (aftertouch) message.
func ChannelPressure(channel, pressure uint8) (Message, error) {
	return channelMessage(KindChannelPressure, channel, pressure, 0)
}

// PitchBend returns a Pitch Bend message. bend is the 14-bit bend value,
// 0 through MaxBend, with PitchBendCenter meaning no bend.
func PitchBend(channel uint8, bend uint16) (Message, error) {
	if channel > MaxChannel || bend > MaxBend {
		return Message{}, ErrInvalidData
	}
	return Message{kind: KindPitchBend, channel: channel, d1: uint8(bend & 0x7F), d2: uint8(bend >> 7)}, nil
}

// QuarterFrame returns an MTC Quarter Frame message. value packs the
// 3-bit message type and 4-bit nibble as they appear on the wire.
func QuarterFrame(value uint8) (Message, error) {
	if value > MaxValue {
		return Message{}, ErrInvalidData
	}
	return Message{kind: KindQuarterFrame, d1: value}, nil
}

// SongPosition returns a Song Position Pointer message. beats is the
// 14-bit position in MIDI beats (sixteenth notes).
func SongPosition(beats uint16) (Message, error) {
	if beats > MaxBend {
		return Message{}, ErrInvalidData
	}
	return Message{kind: KindSongPosition, d1: uint8(beats & 0x7F), d2: uint8(beats >> 7)}, nil
}

// SongSelect returns a Song Select message.
func SongSelect(song uint8) (Message, error) {
	if song > MaxValue {
		return Message{}, ErrInvalidData
	}
	return Message{kind: KindSongSelect, d1: song}, nil
}

// TuneRequest returns a Tune Request message.
func TuneRequest() Message { return Message{kind: KindTuneRequest} }

// TimingClock returns a Timing Clock message.
func TimingClock() Message { return Message{kind: KindTimingClock} }

// Start returns a Start message.
func Start() Message { return Message{kind: KindStart} }

// Continue returns a Continue message.
func Continue() Message { return Message{kind: KindContinue} }

// Stop returns a Stop message.
func Stop() Message { return Message{kind: KindStop} }

// ActiveSensing returns an Active Sensing message.
func ActiveSensing() Message { return Message{kind: KindActiveSensing} }

// SystemReset returns a System Reset message.
func SystemReset() Message { return Message{kind: KindSystemReset} }

// SysEx returns a System Exclusive message over data. The 0xF0/0xF7
// brackets are implied and must not be included; every byte of data must
// have its high bit clear. The Message references data without copying.
func SysEx(data []byte) (Message, error) {
	for _, b := range data {
		if b > MaxValue {
			return Message{}, ErrInvalidData
		}
	}
	return Message{kind: KindSysEx, data: data}, nil
}

// FromWire builds a non-SysEx message from a status byte and its data
// bytes. Unused data bytes must be zero. It rejects unknown or undefined
// status bytes and the SysEx brackets with ErrInvalidData; those require
// the stateful parsers.
func FromWire(status, d1, d2 byte) (Message, error) {
	if IsChannelStatus(status) {
		channel := status & 0x0F
		switch status & 0xF0 {
		case StatusNoteOff:
			return NoteOff(channel, d1, d2)
		case StatusNoteOn:
			return NoteOn(channel, d1, d2)
		case StatusPolyPressure:
			return PolyPressure(channel, d1, d2)
		case StatusControlChange:
			return ControlChange(channel, d1, d2)
		case StatusProgramChange:
			if d2 != 0 {
				return Message{}, ErrInvalidData
			}
			return ProgramChange(channel, d1)
		case StatusChannelPressure:
			if d2 != 0 {
				return Message{}, ErrInvalidData
			}
			return ChannelPressure(channel, d1)
		case StatusPitchBend:
			if d1 > MaxValue || d2 > MaxValue {
				return Message{}, ErrInvalidData
			}
			return PitchBend(channel, uint16(d1)|uint16(d2)<<7)
		}
	}
	switch status {
	case StatusQuarterFrame:
		if d2 != 0 {
			return Message{}, ErrInvalidData
		}
		return QuarterFrame(d1)
	case StatusSongPosition:
		if d1 > MaxValue || d2 > MaxValue {
			return Message{}, ErrInvalidData
		}
		return SongPosition(uint16(d1) | uint16(d2)<<7)
	case StatusSongSelect:
		if d2 != 0 {
			return Message{}, ErrInvalidData
		}
		return SongSelect(d1)
	case StatusTuneRequest:
		if d1 != 0 || d2 != 0 {
			return Message{}, ErrInvalidData
		}
		return TuneRequest(), nil
	case StatusTimingClock, StatusStart, StatusContinue, StatusStop, StatusActiveSensing, StatusSystemReset:
		if d1 != 0 || d2 != 0 {
			return Message{}, ErrInvalidData
		}
		return Message{kind: realTimeKind(status)}, nil
	}
	return Message{}, ErrInvalidData
}

func realTimeKind(status byte) Kind {
	switch status {
	case StatusTimingClock:
		return KindTimingClock
	case StatusStart:
		return KindStart
	case StatusContinue:
		return KindContinue
	case StatusStop:
		return KindStop
	case StatusActiveSensing:
		return KindActiveSensing
	case StatusSystemReset:
		return KindSystemReset
	default:
		return KindInvalid
	}
}

// RealTime returns the Real-Time message for status, or a KindInvalid
// Message if status is not a defined Real-Time byte (0xF9 and 0xFD are
// reserved and map to nothing).
func RealTime(status byte) Message {
	return Message{kind: realTimeKind(status)}
}

// Kind returns the message kind.
func (m Message) Kind() Kind { return m.kind }

// Channel returns the channel number, 0 through 15. Meaningful only for
// Channel Voice kinds.
func (m Message) Channel() uint8 { return m.channel }

// Key returns the note number for NoteOff, NoteOn and PolyPressure.
func (m Message) Key() uint8 { return m.d1 }

// Velocity returns the velocity for NoteOff and NoteOn.
func (m Message) Velocity() uint8 { return m.d2 }

// Controller returns the controller number for ControlChange.
func (m Message) Controller() uint8 { return m.d1 }

// Value returns the controller value for ControlChange.
func (m Message) Value() uint8 { return m.d2 }

// Program returns the program number for ProgramChange.
func (m Message) Program() uint8 { return m.d1 }

// Pressure returns the pressure for PolyPressure and ChannelPressure.
func (m Message) Pressure() uint8 {
	if m.kind == KindPolyPressure {
		return m.d2
	}
	return m.d1
}

// Bend returns the 14-bit value for PitchBend and SongPosition.
func (m Message) Bend() uint16 { return uint16(m.d1) | uint16(m.d2)<<7 }

// Beats returns the 14-bit song position for SongPosition.
func (m Message) Beats() uint16 { return m.Bend() }

// Song returns the song number for SongSelect.
func (m Message) Song() uint8 { return m.d1 }

// QuarterFrameValue returns the raw data byte for QuarterFrame.
func (m Message) QuarterFrameValue() uint8 { return m.d1 }

// Data returns the SysEx payload without the 0xF0/0xF7 brackets. It is
// nil for other kinds.
func (m Message) Data() []byte { return m.data }

// DataBytes returns the raw data bytes as they follow the status byte on
// the wire, zero when the kind carries fewer than two. SysEx payloads are
// not covered; use Data.
func (m Message) DataBytes() (d1, d2 uint8) { return m.d1, m.d2 }

// Status returns the status byte this message carries on the wire,
// including the channel bits for Channel Voice kinds. SysEx returns the
// 0xF0 start marker. KindInvalid returns 0.
func (m Message) Status() byte {
	switch m.kind {
	case KindNoteOff:
		return StatusNoteOff | m.channel
	case KindNoteOn:
		return StatusNoteOn | m.channel
	case KindPolyPressure:
		return StatusPolyPressure | m.channel
	case KindControlChange:
		return StatusControlChange | m.channel
	case KindProgramChange:
		return StatusProgramChange | m.channel
	case KindChannelPressure:
		return StatusChannelPressure | m.channel
	case KindPitchBend:
		return StatusPitchBend | m.channel
	case KindQuarterFrame:
		return StatusQuarterFrame
	case KindSongPosition:
		return StatusSongPosition
	case KindSongSelect:
		return StatusSongSelect
	case KindTuneRequest:
		return StatusTuneRequest
	case KindTimingClock:
		return StatusTimingClock
	case KindStart:
		return StatusStart
	case KindContinue:
		return StatusContinue
	case KindStop:
		return StatusStop
	case KindActiveSensing:
		return StatusActiveSensing
	case KindSystemReset:
		return StatusSystemReset
	case KindSysEx:
		return StatusSysExStart
	default:
		return 0
	}
}

// WireLength returns the number of bytes the message occupies on a serial
// wire with an explicit status byte. SysEx includes both brackets.
func (m Message) WireLength() int {
	switch m.kind {
	case KindInvalid:
		return 0
	case KindSysEx:
		return len(m.data) + 2
	default:
		n, _ := DataLength(m.Status())
		return n + 1
	}
}

// Equal reports whether two messages are the same kind with the same
// fields. SysEx payloads compare by content.
func (m Message) Equal(o Message) bool {
	return m.kind == o.kind && m.channel == o.channel &&
		m.d1 == o.d1 && m.d2 == o.d2 && bytes.Equal(m.data, o.data)
}

func (m Message) String() string {
	switch m.kind {
	case KindNoteOff, KindNoteOn:
		return fmt.Sprintf("%s channel=%d key=%d velocity=%d", m.kind, m.channel, m.d1, m.d2)
	case KindPolyPressure:
		return fmt.Sprintf("%s channel=%d key=%d pressure=%d", m.kind, m.channel, m.d1, m.d2)
	case KindControlChange:
		return fmt.Sprintf("%s channel=%d controller=%d value=%d", m.kind, m.channel, m.d1, m.d2)
	case KindProgramChange:
		return fmt.Sprintf("%s channel=%d program=%d", m.kind, m.channel, m.d1)
	case KindChannelPressure:
		return fmt.Sprintf("%s channel=%d pressure=%d", m.kind, m.channel, m.d1)
	case KindPitchBend:
		return fmt.Sprintf("%s channel=%d bend=%d", m.kind, m.channel, m.Bend())
	case KindQuarterFrame:
		return fmt.Sprintf("%s value=0x%02x", m.kind, m.d1)
	case KindSongPosition:
		return fmt.Sprintf("%s beats=%d", m.kind, m.Beats())
	case KindSongSelect:
		return fmt.Sprintf("%s song=%d", m.kind, m.d1)
	case KindSysEx:
		return fmt.Sprintf("%s length=%d", m.kind, len(m.data))
	default:
		return m.kind.String()
	}
}
