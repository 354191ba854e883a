// Package wire implements the serial (DIN) MIDI byte stream codec: a
// streaming one-byte-at-a-time parser and a message encoder, both free of
// heap allocation so they can run in interrupt handlers and polling loops.
package wire

import (
	"github.com/kevmo314/go-midi/pkg/messages"
)

// Diagnostics receives the recoverable stream events a Parser reports
// while it resynchronizes (see the messages package sentinels). offset is
// the zero-based position of the offending byte in the stream. Calls are
// synchronous, from inside Feed.
type Diagnostics interface {
	StreamEvent(event error, offset int64)
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithDiagnostics mirrors every reported stream event to d. Parsing
// behavior is identical with or without it.
func WithDiagnostics(d Diagnostics) ParserOption {
	return func(p *Parser) { p.diag = d }
}

// WithSysExStream delivers each accepted SysEx payload byte to fn as it
// arrives, before the terminator. With fn consuming the payload the
// parser can run without a SysEx buffer; the completed message then
// carries an empty payload and overflow is never reported.
func WithSysExStream(fn func(b byte)) ParserOption {
	return func(p *Parser) { p.sysexFn = fn }
}

// WithStrictSysEx discards an overflowed SysEx payload entirely instead
// of emitting the truncated prefix at the terminator. The overflow event
// is reported either way and the parser stays usable.
func WithStrictSysEx() ParserOption {
	return func(p *Parser) { p.strict = true }
}

// Parser consumes a serial MIDI byte stream one byte at a time and emits
// completed messages. It expands running status (a repeated Channel Voice
// status byte may be omitted on the wire; System Common messages cancel
// the stored status, Real-Time bytes never touch it), accumulates System
// Exclusive payloads into the caller-provided buffer, and treats every
// protocol violation as a reported, continuable event per the MIDI 1.0
// convention that receivers resynchronize rather than fail.
//
// A Parser is single-owner: it must not be fed from multiple goroutines.
// Feed never allocates; all state lives in the Parser and the buffer
// passed to NewParser.
type Parser struct {
	buf     *messages.SysExBuffer
	diag    Diagnostics
	sysexFn func(byte)
	strict  bool

	status   byte // status collecting data bytes, 0 when idle
	running  byte // stored Channel Voice status, 0 when cleared
	need     uint8
	have     uint8
	d1, d2   byte
	inSysEx  bool
	overflow bool
	pos      int64
}

// NewParser returns a parser staging SysEx payloads in buf. buf may be
// nil when SysEx payloads are streamed (WithSysExStream) or irrelevant;
// it then behaves as a zero-capacity buffer.
func NewParser(buf *messages.SysExBuffer, opts ...ParserOption) *Parser {
	p := &Parser{buf: buf}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Feed consumes one byte. It returns the message the byte completed, or
// a Message of KindInvalid when the byte completed none. The error, when
// non-nil, is one of the messages package stream events; the parser has
// already recovered and the next Feed proceeds normally. A single byte
// can legally produce both, e.g. a Tune Request that aborts an open
// SysEx returns the completed message and ErrSysExAborted together.
//
// SysEx messages returned by Feed borrow the parser's buffer: their
// payload stays valid only until the next Feed or Reset.
func (p *Parser) Feed(b byte) (messages.Message, error) {
	pos := p.pos
	p.pos++

	// Real-Time bytes interleave transparently: emit and leave every
	// piece of parser state alone. Reserved 0xF9/0xFD yield KindInvalid.
	if messages.IsRealTime(b) {
		return messages.RealTime(b), nil
	}
	if messages.IsStatus(b) {
		return p.feedStatus(b, pos)
	}
	return p.feedData(b, pos)
}

func (p *Parser) feedStatus(b byte, pos int64) (messages.Message, error) {
	var event error
	if p.inSysEx && b != messages.StatusSysExEnd {
		p.abortSysEx()
		event = p.report(messages.ErrSysExAborted, pos)
	}

	switch {
	case b == messages.StatusSysExStart:
		p.status, p.running = 0, 0
		p.inSysEx = true
		p.overflow = false
		p.buf.Reset()
		return messages.Message{}, event

	case b == messages.StatusSysExEnd:
		if !p.inSysEx {
			return messages.Message{}, p.report(messages.ErrUnexpectedEndOfExclusive, pos)
		}
		overflowed := p.overflow
		p.inSysEx = false
		p.overflow = false
		if overflowed && p.strict {
			p.buf.Reset()
			return messages.Message{}, nil
		}
		m, err := messages.SysEx(p.buf.Bytes())
		if err != nil {
			return messages.Message{}, err
		}
		return m, nil

	case messages.IsChannelStatus(b):
		p.status = b
		p.running = b
		n, _ := messages.DataLength(b)
		p.need = uint8(n)
		p.have = 0
		return messages.Message{}, event

	default:
		// System Common, 0xF1 through 0xF6: cancels running status.
		p.running = 0
		p.status = 0
		switch b {
		case messages.StatusTuneRequest:
			return messages.TuneRequest(), event
		case messages.StatusQuarterFrame, messages.StatusSongPosition, messages.StatusSongSelect:
			p.status = b
			n, _ := messages.DataLength(b)
			p.need = uint8(n)
			p.have = 0
		}
		// Reserved 0xF4/0xF5 fall through with no message pending.
		return messages.Message{}, event
	}
}

func (p *Parser) feedData(b byte, pos int64) (messages.Message, error) {
	if p.inSysEx {
		if p.sysexFn != nil {
			p.sysexFn(b)
			p.buf.Append(b)
			return messages.Message{}, nil
		}
		if p.overflow {
			p.buf.Append(b)
			return messages.Message{}, nil
		}
		if !p.buf.Append(b) {
			p.overflow = true
			return messages.Message{}, p.report(messages.ErrSysExOverflow, pos)
		}
		return messages.Message{}, nil
	}

	if p.status == 0 {
		if p.running == 0 {
			return messages.Message{}, p.report(messages.ErrDataWithoutStatus, pos)
		}
		// Running status: the omitted status byte is the stored one.
		p.status = p.running
		n, _ := messages.DataLength(p.status)
		p.need = uint8(n)
		p.have = 0
	}

	if p.have == 0 {
		p.d1 = b
	} else {
		p.d2 = b
	}
	p.have++
	if p.have < p.need {
		return messages.Message{}, nil
	}

	status, d1, d2 := p.status, p.d1, byte(0)
	if p.need == 2 {
		d2 = p.d2
	}
	p.status = 0
	p.d1, p.d2 = 0, 0
	p.have, p.need = 0, 0
	return messages.FromWire(status, d1, d2)
}

// Reset returns the parser to its initial state: no running status, no
// message in progress, SysEx buffer emptied, stream offset zeroed.
func (p *Parser) Reset() {
	p.status, p.running = 0, 0
	p.need, p.have = 0, 0
	p.d1, p.d2 = 0, 0
	p.inSysEx, p.overflow = false, false
	p.pos = 0
	p.buf.Reset()
}

func (p *Parser) abortSysEx() {
	p.inSysEx = false
	p.overflow = false
	p.buf.Reset()
}

func (p *Parser) report(event error, pos int64) error {
	if p.diag != nil {
		p.diag.StreamEvent(event, pos)
	}
	return event
}
