package wire

import (
	"io"
	"slices"

	"github.com/kevmo314/go-midi/pkg/messages"
)

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithRunningStatus enables running-status compression: a Channel Voice
// message whose status byte equals the previous one encoded through this
// Encoder is emitted without it.
func WithRunningStatus() EncoderOption {
	return func(e *Encoder) { e.compress = true }
}

// Encoder turns messages back into serial MIDI bytes. The zero value and
// NewEncoder() both emit every status byte explicitly; running-status
// compression is opt-in. System Common and SysEx emission invalidate the
// stored status, matching what a receiver's parser does with them;
// Real-Time emission leaves it intact.
type Encoder struct {
	compress bool
	last     byte // last Channel Voice status written, 0 when invalidated
}

// NewEncoder returns an encoder.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EncodeInto writes the wire bytes for m into dst and returns the number
// of bytes written. It returns io.ErrShortBuffer, writing nothing, when
// dst cannot hold the message, and messages.ErrInvalidData for a
// KindInvalid message. EncodeInto does not allocate.
func (e *Encoder) EncodeInto(dst []byte, m messages.Message) (int, error) {
	switch {
	case m.Kind() == messages.KindInvalid:
		return 0, messages.ErrInvalidData

	case m.Kind() == messages.KindSysEx:
		n := m.WireLength()
		if len(dst) < n {
			return 0, io.ErrShortBuffer
		}
		dst[0] = messages.StatusSysExStart
		copy(dst[1:], m.Data())
		dst[n-1] = messages.StatusSysExEnd
		e.last = 0
		return n, nil

	case m.Kind().IsRealTime():
		if len(dst) < 1 {
			return 0, io.ErrShortBuffer
		}
		dst[0] = m.Status()
		return 1, nil

	default:
		status := m.Status()
		dataLen, _ := messages.DataLength(status)
		omit := e.compress && m.Kind().IsChannelVoice() && e.last == status

		n := dataLen
		if !omit {
			n++
		}
		if len(dst) < n {
			return 0, io.ErrShortBuffer
		}

		i := 0
		if !omit {
			dst[i] = status
			i++
		}
		d1, d2 := m.DataBytes()
		if dataLen >= 1 {
			dst[i] = d1
			i++
		}
		if dataLen == 2 {
			dst[i] = d2
		}

		if m.Kind().IsChannelVoice() {
			e.last = status
		} else {
			e.last = 0
		}
		return n, nil
	}
}

// Append encodes m and appends the bytes to dst, growing it as needed.
func (e *Encoder) Append(dst []byte, m messages.Message) ([]byte, error) {
	n := m.WireLength()
	start := len(dst)
	dst = slices.Grow(dst, n)[:start+n]
	wrote, err := e.EncodeInto(dst[start:], m)
	if err != nil {
		return dst[:start], err
	}
	return dst[:start+wrote], nil
}

// Reset forgets the stored running status. The next Channel Voice
// message emits its status byte explicitly.
func (e *Encoder) Reset() { e.last = 0 }
