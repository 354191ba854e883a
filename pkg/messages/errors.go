package messages

import "errors"

// ErrInvalidData rejects a message construction whose arguments violate
// the MIDI 1.0 ranges. It is the only error in this package that means
// the operation did not happen.
var ErrInvalidData = errors.New("invalid message data")

// Stream events reported by the parsers. They are recoverable: the parser
// that reports one stays usable and resynchronizes on subsequent input.
var (
	// ErrDataWithoutStatus: a data byte arrived with no status byte in
	// effect, explicit or running. The byte was discarded.
	ErrDataWithoutStatus = errors.New("data byte without a status byte")

	// ErrUnexpectedEndOfExclusive: a 0xF7 terminator arrived with no
	// System Exclusive message in progress.
	ErrUnexpectedEndOfExclusive = errors.New("unexpected end of exclusive")

	// ErrSysExAborted: a status byte interrupted a System Exclusive
	// message before its terminator. The partial payload was discarded
	// and the interrupting byte was processed normally.
	ErrSysExAborted = errors.New("system exclusive aborted")

	// ErrSysExOverflow: a System Exclusive payload exceeded the buffer
	// capacity. Reported once per message; further payload bytes are
	// dropped while the parser keeps scanning for the terminator.
	ErrSysExOverflow = errors.New("system exclusive buffer overflow")
)
