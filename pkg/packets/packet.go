// Package packets implements the USB-MIDI 1.0 event packet codec. Every
// event crosses the bus as a fixed 4-byte packet: a header byte holding
// the cable number and Code Index Number, then up to three MIDI bytes,
// zero-padded. Encoding and decoding translate between these packets and
// the shared message model, fragmenting and reassembling System Exclusive
// payloads across packets per cable.
package packets

import "fmt"

// CIN is the Code Index Number, the low nibble of a packet's header byte.
// It classifies the packet's payload as defined in the USB Device Class
// Definition for MIDI Devices 1.0, Table 4-1.
type CIN byte

const (
	// CINMiscellaneous and CINCableEvent are reserved for future use.
	// Packets carrying them have no defined payload and are skipped.
	CINMiscellaneous CIN = 0x0
	CINCableEvent    CIN = 0x1

	// CINSystemCommon2 and CINSystemCommon3 carry two- and three-byte
	// System Common messages.
	CINSystemCommon2 CIN = 0x2
	CINSystemCommon3 CIN = 0x3

	// CINSysExStart carries three bytes of a System Exclusive message
	// that starts or continues beyond this packet.
	CINSysExStart CIN = 0x4

	// CINSysExEnd1 carries the final byte of a System Exclusive message,
	// or a single-byte System Common message (Tune Request).
	// CINSysExEnd2 and CINSysExEnd3 carry the final two or three bytes
	// of a System Exclusive message.
	CINSysExEnd1 CIN = 0x5
	CINSysExEnd2 CIN = 0x6
	CINSysExEnd3 CIN = 0x7

	// Channel Voice messages use the high nibble of their status byte.
	CINNoteOff         CIN = 0x8
	CINNoteOn          CIN = 0x9
	CINPolyPressure    CIN = 0xA
	CINControlChange   CIN = 0xB
	CINProgramChange   CIN = 0xC
	CINChannelPressure CIN = 0xD
	CINPitchBend       CIN = 0xE

	// CINSingleByte carries one unparsed MIDI byte, used for System
	// Real-Time messages.
	CINSingleByte CIN = 0xF
)

// PayloadLength returns the number of meaningful MIDI bytes in a packet
// with this CIN. Trailing bytes beyond it are padding. ok is false for
// the reserved CINs, whose payload is undefined.
func (c CIN) PayloadLength() (n int, ok bool) {
	switch c {
	case CINSystemCommon2, CINSysExEnd2:
		return 2, true
	case CINSystemCommon3, CINSysExStart, CINSysExEnd3:
		return 3, true
	case CINSysExEnd1, CINSingleByte:
		return 1, true
	case CINProgramChange, CINChannelPressure:
		return 2, true
	case CINNoteOff, CINNoteOn, CINPolyPressure, CINControlChange, CINPitchBend:
		return 3, true
	}
	return 0, false
}

// IsSysEx reports whether the CIN carries System Exclusive payload bytes.
func (c CIN) IsSysEx() bool { return c >= CINSysExStart && c <= CINSysExEnd3 }

// MaxCable is the largest virtual cable number, 4 bits on the wire.
const MaxCable = 0x0F

// Packet is one USB-MIDI event packet. Byte 0 packs the cable number in
// the high nibble and the CIN in the low nibble; bytes 1 through 3 hold
// the MIDI bytes, zero-padded. The zero value is a reserved-CIN packet
// on cable 0, which decoders skip; devices commonly pad bulk transfers
// with it.
type Packet [4]byte

// New assembles a packet header and payload. Callers must respect the
// CIN's payload length; extra bytes must be zero.
func New(cable uint8, cin CIN, b0, b1, b2 byte) Packet {
	return Packet{cable<<4 | byte(cin&0x0F), b0, b1, b2}
}

// Cable returns the virtual cable number, 0 through MaxCable.
func (p Packet) Cable() uint8 { return p[0] >> 4 }

// CIN returns the packet's Code Index Number.
func (p Packet) CIN() CIN { return CIN(p[0] & 0x0F) }

// Payload returns the meaningful MIDI bytes, excluding padding. It is
// empty for the reserved CINs.
func (p Packet) Payload() []byte {
	n, ok := p.CIN().PayloadLength()
	if !ok {
		return nil
	}
	return p[1 : 1+n]
}

func (p Packet) String() string {
	return fmt.Sprintf("cable=%d cin=0x%X % 02X", p.Cable(), byte(p.CIN()), p.Payload())
}
