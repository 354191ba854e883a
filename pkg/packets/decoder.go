package packets

import (
	"github.com/kevmo314/go-midi/pkg/messages"
)

// Diagnostics receives the recoverable stream events a Decoder reports,
// tagged with the cable the offending packet arrived on. Calls are
// synchronous, from inside Decode.
type Diagnostics interface {
	PacketEvent(event error, cable uint8)
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithCableBuffer stages SysEx payloads arriving on cable in buf.
// Cables without a buffer behave as zero-capacity: SysEx traffic on them
// keeps the decoder in sync but every payload byte overflows. Cables
// above MaxCable are ignored.
func WithCableBuffer(cable uint8, buf *messages.SysExBuffer) DecoderOption {
	return func(d *Decoder) {
		if cable <= MaxCable {
			d.cables[cable].buf = buf
		}
	}
}

// WithDiagnostics mirrors every reported event to diag. Decoding
// behavior is identical with or without it.
func WithDiagnostics(diag Diagnostics) DecoderOption {
	return func(d *Decoder) { d.diag = diag }
}

// WithStrictSysEx discards an overflowed SysEx payload entirely instead
// of emitting the truncated prefix at the terminator.
func WithStrictSysEx() DecoderOption {
	return func(d *Decoder) { d.strict = true }
}

type cableState struct {
	buf      *messages.SysExBuffer
	inSysEx  bool
	overflow bool
}

// Decoder turns USB-MIDI event packets back into messages. Non-SysEx
// packets are self-contained; SysEx payloads accumulate per cable until
// a terminal CIN arrives, so packets from different cables may
// interleave freely. The abort, overflow and resynchronization policy
// matches the serial parser's, applied independently per cable.
//
// A Decoder is single-owner: one per packet stream, not shared between
// goroutines. Decode never allocates.
type Decoder struct {
	cables [MaxCable + 1]cableState
	diag   Diagnostics
	strict bool
}

// NewDecoder returns a decoder. Cables accumulate SysEx into the buffers
// given by WithCableBuffer; see its note on unbuffered cables.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode consumes one packet. It returns the message the packet
// completed, or a Message of KindInvalid when it completed none:
// reserved-CIN packets (including the all-zero padding packets many
// devices emit) and non-terminal SysEx packets produce nothing. The
// error, when non-nil, is one of the messages package stream events; the
// decoder has already recovered and the next Decode proceeds normally.
//
// SysEx messages returned by Decode borrow the cable's buffer: their
// payload stays valid only until the next Decode or Reset.
func (d *Decoder) Decode(p Packet) (messages.Message, error) {
	cable := p.Cable()
	cin := p.CIN()

	if cin.IsSysEx() {
		return d.decodeSysEx(cable, p)
	}

	switch cin {
	case CINMiscellaneous, CINCableEvent:
		return messages.Message{}, nil
	case CINSingleByte:
		if messages.IsRealTime(p[1]) {
			return messages.RealTime(p[1]), nil
		}
		return messages.FromWire(p[1], 0, 0)
	default:
		return messages.FromWire(p[1], p[2], p[3])
	}
}

// decodeSysEx runs the packet's payload bytes through the cable's SysEx
// state machine. CINSysExEnd1 doubles as the single-byte System Common
// CIN, so a Tune Request can surface here too. Processing stops at the
// first completed message; a terminal CIN whose bytes never terminate
// the message aborts the cable, since the peer's framing claimed an end
// that did not happen.
func (d *Decoder) decodeSysEx(cable uint8, p Packet) (messages.Message, error) {
	st := &d.cables[cable]
	n, _ := p.CIN().PayloadLength()
	var event error

	for _, b := range p[1 : 1+n] {
		switch {
		case b == messages.StatusSysExStart:
			if st.inSysEx {
				event = d.report(event, messages.ErrSysExAborted, cable)
			}
			st.buf.Reset()
			st.inSysEx = true
			st.overflow = false

		case b == messages.StatusSysExEnd:
			if !st.inSysEx {
				return messages.Message{}, d.report(event, messages.ErrUnexpectedEndOfExclusive, cable)
			}
			overflowed := st.overflow
			st.inSysEx = false
			st.overflow = false
			if overflowed && d.strict {
				st.buf.Reset()
				return messages.Message{}, event
			}
			m, err := messages.SysEx(st.buf.Bytes())
			if err != nil {
				return messages.Message{}, err
			}
			return m, event

		case messages.IsStatus(b):
			// A status byte framed as SysEx payload. Mirror the serial
			// parser: abort any open message, then honor the one status
			// this CIN legitimately carries, Tune Request.
			if st.inSysEx {
				st.reset()
				event = d.report(event, messages.ErrSysExAborted, cable)
			}
			if b == messages.StatusTuneRequest {
				return messages.TuneRequest(), event
			}

		default:
			if !st.inSysEx {
				event = d.report(event, messages.ErrDataWithoutStatus, cable)
				continue
			}
			if st.overflow {
				st.buf.Append(b)
				continue
			}
			if !st.buf.Append(b) {
				st.overflow = true
				event = d.report(event, messages.ErrSysExOverflow, cable)
			}
		}
	}

	if p.CIN() != CINSysExStart && st.inSysEx {
		st.reset()
		event = d.report(event, messages.ErrSysExAborted, cable)
	}
	return messages.Message{}, event
}

// Reset returns every cable to its initial state and empties its buffer.
func (d *Decoder) Reset() {
	for i := range d.cables {
		d.cables[i].reset()
	}
}

func (st *cableState) reset() {
	st.inSysEx = false
	st.overflow = false
	st.buf.Reset()
}

// report delivers event to the diagnostics sink and folds it into the
// packet's returned event, keeping the first when several occur.
func (d *Decoder) report(prev, event error, cable uint8) error {
	if d.diag != nil {
		d.diag.PacketEvent(event, cable)
	}
	if prev != nil {
		return prev
	}
	return event
}
