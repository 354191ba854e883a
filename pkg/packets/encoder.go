package packets

import (
	"io"

	"github.com/kevmo314/go-midi/pkg/messages"
)

// PacketCount returns the number of packets Encode produces for m.
// Non-SysEx messages always fit in one; a SysEx message needs one packet
// per three bytes of its bracketed wire form. Zero for KindInvalid.
func PacketCount(m messages.Message) int {
	switch m.Kind() {
	case messages.KindInvalid:
		return 0
	case messages.KindSysEx:
		// Payload plus the 0xF0/0xF7 brackets, three bytes per packet.
		return (len(m.Data()) + 2 + 2) / 3
	default:
		return 1
	}
}

// Encode writes the packets for m on cable into dst and returns the
// number of packets written. It returns io.ErrShortBuffer, writing
// nothing, when dst cannot hold them, and messages.ErrInvalidData for a
// KindInvalid message or a cable above MaxCable. Encode does not
// allocate; it is stateless and safe to call with any message order.
func Encode(dst []Packet, cable uint8, m messages.Message) (int, error) {
	if cable > MaxCable {
		return 0, messages.ErrInvalidData
	}
	kind := m.Kind()
	if kind == messages.KindInvalid {
		return 0, messages.ErrInvalidData
	}
	if kind == messages.KindSysEx {
		return encodeSysEx(dst, cable, m.Data())
	}
	if len(dst) < 1 {
		return 0, io.ErrShortBuffer
	}

	status := m.Status()
	d1, d2 := m.DataBytes()
	dst[0] = New(cable, cinFor(m), status, d1, d2)
	return 1, nil
}

func cinFor(m messages.Message) CIN {
	kind := m.Kind()
	switch {
	case kind.IsChannelVoice():
		return CIN(m.Status() >> 4)
	case kind.IsRealTime():
		return CINSingleByte
	case kind == messages.KindTuneRequest:
		return CINSysExEnd1
	case kind == messages.KindSongPosition:
		return CINSystemCommon3
	default:
		// QuarterFrame, SongSelect: two bytes on the wire.
		return CINSystemCommon2
	}
}

// encodeSysEx fragments F0 + data + F7 into three-byte groups. Every
// full group before the last uses CINSysExStart; the final group of one,
// two or three bytes selects the terminal CIN, which is how receivers
// know the message ended.
func encodeSysEx(dst []Packet, cable uint8, data []byte) (int, error) {
	total := len(data) + 2
	count := (total + 2) / 3
	if len(dst) < count {
		return 0, io.ErrShortBuffer
	}

	byteAt := func(i int) byte {
		switch {
		case i == 0:
			return messages.StatusSysExStart
		case i == total-1:
			return messages.StatusSysExEnd
		default:
			return data[i-1]
		}
	}

	for i := 0; i < count; i++ {
		rem := total - i*3
		if rem > 3 {
			dst[i] = New(cable, CINSysExStart, byteAt(i*3), byteAt(i*3+1), byteAt(i*3+2))
			continue
		}
		var b [3]byte
		for j := 0; j < rem; j++ {
			b[j] = byteAt(i*3 + j)
		}
		dst[i] = New(cable, CINSysExEnd1+CIN(rem-1), b[0], b[1], b[2])
	}
	return count, nil
}
