package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kevmo314/go-midi/pkg/messages"
)

// feedAll pushes stream through p, returning completed messages and
// reported events in order. SysEx payloads are copied out so later feeds
// cannot invalidate them.
func feedAll(t *testing.T, p *Parser, stream []byte) ([]messages.Message, []error) {
	t.Helper()
	var msgs []messages.Message
	var events []error
	for i, b := range stream {
		m, err := p.Feed(b)
		if err != nil {
			events = append(events, err)
		}
		if m.Kind() == messages.KindInvalid {
			continue
		}
		if m.Kind() == messages.KindSysEx {
			copied, err := messages.SysEx(bytes.Clone(m.Data()))
			if err != nil {
				t.Fatalf("byte %d: cloning SysEx payload: %v", i, err)
			}
			m = copied
		}
		msgs = append(msgs, m)
	}
	return msgs, events
}

func mustNoteOn(t *testing.T, channel, key, velocity uint8) messages.Message {
	t.Helper()
	m, err := messages.NoteOn(channel, key, velocity)
	if err != nil {
		t.Fatalf("NoteOn failed: %v", err)
	}
	return m
}

func TestParser_RunningStatus(t *testing.T) {
	p := NewParser(nil)

	msgs, events := feedAll(t, p, []byte{0x90, 0x40, 0x7F, 0x41, 0x7F})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if want := mustNoteOn(t, 0, 0x40, 0x7F); !msgs[0].Equal(want) {
		t.Errorf("msgs[0] = %v, want %v", msgs[0], want)
	}
	if want := mustNoteOn(t, 0, 0x41, 0x7F); !msgs[1].Equal(want) {
		t.Errorf("msgs[1] = %v, want %v", msgs[1], want)
	}
}

func TestParser_RealTimeInterleave(t *testing.T) {
	p := NewParser(nil)

	msgs, events := feedAll(t, p, []byte{0x90, 0xF8, 0x40, 0x7F})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Kind() != messages.KindTimingClock {
		t.Errorf("msgs[0] = %v, want TimingClock", msgs[0])
	}
	if want := mustNoteOn(t, 0, 0x40, 0x7F); !msgs[1].Equal(want) {
		t.Errorf("msgs[1] = %v, want %v", msgs[1], want)
	}
}

func TestParser_SysExAbort(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 16)))

	msgs, events := feedAll(t, p, []byte{0xF0, 0x01, 0x02, 0x90, 0x40, 0x7F})

	if len(events) != 1 || !errors.Is(events[0], messages.ErrSysExAborted) {
		t.Fatalf("events = %v, want [ErrSysExAborted]", events)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if want := mustNoteOn(t, 0, 0x40, 0x7F); !msgs[0].Equal(want) {
		t.Errorf("msgs[0] = %v, want %v", msgs[0], want)
	}
}

func TestParser_SysExComplete(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 16)))

	msgs, events := feedAll(t, p, []byte{0xF0, 0x7D, 0x01, 0x02, 0x03, 0xF7})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 1 || msgs[0].Kind() != messages.KindSysEx {
		t.Fatalf("msgs = %v, want one SysEx", msgs)
	}
	if !bytes.Equal(msgs[0].Data(), []byte{0x7D, 0x01, 0x02, 0x03}) {
		t.Errorf("payload = %x, want 7d010203", msgs[0].Data())
	}
}

func TestParser_SysExEmpty(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 4)))

	msgs, events := feedAll(t, p, []byte{0xF0, 0xF7})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 1 || msgs[0].Kind() != messages.KindSysEx {
		t.Fatalf("msgs = %v, want one SysEx", msgs)
	}
	if len(msgs[0].Data()) != 0 {
		t.Errorf("payload = %x, want empty", msgs[0].Data())
	}
}

func TestParser_RealTimeInsideSysEx(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 8)))

	msgs, events := feedAll(t, p, []byte{0xF0, 0x01, 0xFE, 0x02, 0xF7})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Kind() != messages.KindActiveSensing {
		t.Errorf("msgs[0] = %v, want ActiveSensing", msgs[0])
	}
	if msgs[1].Kind() != messages.KindSysEx || !bytes.Equal(msgs[1].Data(), []byte{0x01, 0x02}) {
		t.Errorf("msgs[1] = %v payload %x, want SysEx 0102", msgs[1], msgs[1].Data())
	}
}

func TestParser_SysExOverflow(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 4)))

	// 6 payload bytes against capacity 4, then a well-formed Note On.
	stream := []byte{0xF0, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0xF7, 0x90, 0x40, 0x7F}
	msgs, events := feedAll(t, p, stream)

	if len(events) != 1 || !errors.Is(events[0], messages.ErrSysExOverflow) {
		t.Fatalf("events = %v, want [ErrSysExOverflow]", events)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	// Default policy keeps the bracket and emits the truncated prefix.
	if msgs[0].Kind() != messages.KindSysEx || !bytes.Equal(msgs[0].Data(), []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("msgs[0] = %v payload %x, want truncated SysEx 01020304", msgs[0], msgs[0].Data())
	}
	if want := mustNoteOn(t, 0, 0x40, 0x7F); !msgs[1].Equal(want) {
		t.Errorf("msgs[1] = %v, want %v", msgs[1], want)
	}
}

func TestParser_SysExOverflowStrict(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 2)), WithStrictSysEx())

	msgs, events := feedAll(t, p, []byte{0xF0, 0x01, 0x02, 0x03, 0xF7, 0x90, 0x40, 0x7F})

	if len(events) != 1 || !errors.Is(events[0], messages.ErrSysExOverflow) {
		t.Fatalf("events = %v, want [ErrSysExOverflow]", events)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (overflowed SysEx discarded)", len(msgs))
	}
	if want := mustNoteOn(t, 0, 0x40, 0x7F); !msgs[0].Equal(want) {
		t.Errorf("msgs[0] = %v, want %v", msgs[0], want)
	}
}

func TestParser_DataWithoutStatus(t *testing.T) {
	p := NewParser(nil)

	m, err := p.Feed(0x40)
	if !errors.Is(err, messages.ErrDataWithoutStatus) {
		t.Errorf("err = %v, want ErrDataWithoutStatus", err)
	}
	if m.Kind() != messages.KindInvalid {
		t.Errorf("message = %v, want none", m)
	}

	// The parser synchronizes as soon as a status byte arrives.
	msgs, events := feedAll(t, p, []byte{0x90, 0x40, 0x7F})
	if len(events) != 0 || len(msgs) != 1 {
		t.Fatalf("after resync: msgs = %v, events = %v", msgs, events)
	}
}

func TestParser_UnexpectedEndOfExclusive(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Feed(0xF7)
	if !errors.Is(err, messages.ErrUnexpectedEndOfExclusive) {
		t.Errorf("err = %v, want ErrUnexpectedEndOfExclusive", err)
	}
}

func TestParser_SystemCommonClearsRunningStatus(t *testing.T) {
	p := NewParser(nil)

	msgs, events := feedAll(t, p, []byte{
		0x90, 0x40, 0x7F, // NoteOn, arms running status
		0xF3, 0x05, // SongSelect, must clear it
		0x41, 0x7F, // would be a running-status NoteOn otherwise
	})

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[1].Kind() != messages.KindSongSelect || msgs[1].Song() != 5 {
		t.Errorf("msgs[1] = %v, want SongSelect song=5", msgs[1])
	}
	if len(events) != 2 {
		t.Fatalf("events = %v, want two ErrDataWithoutStatus", events)
	}
	for _, ev := range events {
		if !errors.Is(ev, messages.ErrDataWithoutStatus) {
			t.Errorf("event = %v, want ErrDataWithoutStatus", ev)
		}
	}
}

func TestParser_RealTimePreservesRunningStatus(t *testing.T) {
	p := NewParser(nil)

	msgs, events := feedAll(t, p, []byte{0x90, 0x40, 0x7F, 0xF8, 0x41, 0x7F})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if want := mustNoteOn(t, 0, 0x41, 0x7F); !msgs[2].Equal(want) {
		t.Errorf("msgs[2] = %v, want %v", msgs[2], want)
	}
}

func TestParser_TuneRequestAbortsSysEx(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 8)))

	p.Feed(0xF0)
	p.Feed(0x01)
	m, err := p.Feed(0xF6)

	if !errors.Is(err, messages.ErrSysExAborted) {
		t.Errorf("err = %v, want ErrSysExAborted", err)
	}
	if m.Kind() != messages.KindTuneRequest {
		t.Errorf("message = %v, want TuneRequest", m)
	}
}

func TestParser_SysExRestartAborts(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 8)))

	msgs, events := feedAll(t, p, []byte{0xF0, 0x01, 0x02, 0xF0, 0x03, 0xF7})

	if len(events) != 1 || !errors.Is(events[0], messages.ErrSysExAborted) {
		t.Fatalf("events = %v, want [ErrSysExAborted]", events)
	}
	if len(msgs) != 1 || !bytes.Equal(msgs[0].Data(), []byte{0x03}) {
		t.Fatalf("msgs = %v, want one SysEx with payload 03", msgs)
	}
}

func TestParser_ReservedStatusBytes(t *testing.T) {
	p := NewParser(nil)

	// 0xF9/0xFD are reserved Real-Time: fully transparent.
	msgs, events := feedAll(t, p, []byte{0x90, 0xF9, 0x40, 0xFD, 0x7F})
	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if want := mustNoteOn(t, 0, 0x40, 0x7F); !msgs[0].Equal(want) {
		t.Errorf("msgs[0] = %v, want %v", msgs[0], want)
	}

	// 0xF4/0xF5 are reserved System Common: discarded but they still
	// cancel running status.
	msgs, events = feedAll(t, p, []byte{0x90, 0x40, 0x7F, 0xF4, 0x41, 0x7F})
	if len(msgs) != 1 {
		t.Errorf("got %d messages, want 1", len(msgs))
	}
	if len(events) != 2 {
		t.Errorf("events = %v, want two ErrDataWithoutStatus", events)
	}
}

type eventRecorder struct {
	events  []error
	offsets []int64
}

func (r *eventRecorder) StreamEvent(event error, offset int64) {
	r.events = append(r.events, event)
	r.offsets = append(r.offsets, offset)
}

func TestParser_DiagnosticsOffsets(t *testing.T) {
	rec := &eventRecorder{}
	p := NewParser(messages.NewSysExBuffer(make([]byte, 8)), WithDiagnostics(rec))

	feedAll(t, p, []byte{
		0x40,       // offset 0: data without status
		0xF0, 0x01, // SysEx opens
		0x90, 0x40, 0x7F, // offset 3: aborts it
	})

	if len(rec.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(rec.events))
	}
	if !errors.Is(rec.events[0], messages.ErrDataWithoutStatus) || rec.offsets[0] != 0 {
		t.Errorf("event 0 = %v at %d, want ErrDataWithoutStatus at 0", rec.events[0], rec.offsets[0])
	}
	if !errors.Is(rec.events[1], messages.ErrSysExAborted) || rec.offsets[1] != 3 {
		t.Errorf("event 1 = %v at %d, want ErrSysExAborted at 3", rec.events[1], rec.offsets[1])
	}
}

func TestParser_SysExStream(t *testing.T) {
	var streamed []byte
	p := NewParser(nil, WithSysExStream(func(b byte) { streamed = append(streamed, b) }))

	msgs, events := feedAll(t, p, []byte{0xF0, 0x11, 0x22, 0x33, 0xF7})

	if len(events) != 0 {
		t.Fatalf("events = %v, want none (stream consumer, no overflow)", events)
	}
	if !bytes.Equal(streamed, []byte{0x11, 0x22, 0x33}) {
		t.Errorf("streamed = %x, want 112233", streamed)
	}
	if len(msgs) != 1 || msgs[0].Kind() != messages.KindSysEx || len(msgs[0].Data()) != 0 {
		t.Errorf("msgs = %v, want one SysEx with empty payload", msgs)
	}
}

func TestParser_Reset(t *testing.T) {
	p := NewParser(messages.NewSysExBuffer(make([]byte, 8)))

	p.Feed(0x90)
	p.Feed(0x40)
	p.Reset()

	_, err := p.Feed(0x7F)
	if !errors.Is(err, messages.ErrDataWithoutStatus) {
		t.Errorf("err after Reset = %v, want ErrDataWithoutStatus", err)
	}
}
