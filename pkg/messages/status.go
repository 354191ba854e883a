package messages

// Status bytes as defined in the MIDI 1.0 Detailed Specification. Channel
// Voice values are the high nibble; the low nibble carries the channel.
const (
	StatusNoteOff         = 0x80
	StatusNoteOn          = 0x90
	StatusPolyPressure    = 0xA0
	StatusControlChange   = 0xB0
	StatusProgramChange   = 0xC0
	StatusChannelPressure = 0xD0
	StatusPitchBend       = 0xE0

	StatusSysExStart   = 0xF0
	StatusQuarterFrame = 0xF1
	StatusSongPosition = 0xF2
	StatusSongSelect   = 0xF3
	StatusTuneRequest  = 0xF6
	StatusSysExEnd     = 0xF7

	StatusTimingClock   = 0xF8
	StatusStart         = 0xFA
	StatusContinue      = 0xFB
	StatusStop          = 0xFC
	StatusActiveSensing = 0xFE
	StatusSystemReset   = 0xFF
)

// Value bounds for message fields.
const (
	MaxChannel = 0x0F   // channel numbers are 4 bits
	MaxValue   = 0x7F   // data bytes are 7 bits
	MaxBend    = 0x3FFF // pitch bend and song position are 14 bits

	// PitchBendCenter is the no-bend value of the 14-bit bend range.
	PitchBendCenter = 0x2000
)

// IsStatus reports whether b is a status byte (high bit set).
func IsStatus(b byte) bool { return b&0x80 != 0 }

// IsData reports whether b is a data byte (high bit clear).
func IsData(b byte) bool { return b&0x80 == 0 }

// IsRealTime reports whether b is in the System Real-Time range,
// 0xF8 through 0xFF, including the reserved 0xF9 and 0xFD.
func IsRealTime(b byte) bool { return b >= StatusTimingClock }

// IsChannelStatus reports whether b is a Channel Voice status byte.
func IsChannelStatus(b byte) bool { return b >= StatusNoteOff && b < StatusSysExStart }

// IsSystemCommon reports whether b is a System Common status byte,
// 0xF1 through 0xF6, excluding the SysEx brackets.
func IsSystemCommon(b byte) bool { return b >= StatusQuarterFrame && b < StatusSysExEnd }

// DataLength returns the number of data bytes that follow status on the
// wire. ok is false for data bytes, the SysEx brackets (variable length),
// and the reserved status bytes 0xF4, 0xF5, 0xF9 and 0xFD.
func DataLength(status byte) (n int, ok bool) {
	if IsChannelStatus(status) {
		switch status & 0xF0 {
		case StatusProgramChange, StatusChannelPressure:
			return 1, true
		default:
			return 2, true
		}
	}
	switch status {
	case StatusQuarterFrame, StatusSongSelect:
		return 1, true
	case StatusSongPosition:
		return 2, true
	case StatusTuneRequest, StatusTimingClock, StatusStart, StatusContinue,
		StatusStop, StatusActiveSensing, StatusSystemReset:
		return 0, true
	}
	return 0, false
}
