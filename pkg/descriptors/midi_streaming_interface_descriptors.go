// Package descriptors implements the class-specific USB descriptors a
// MIDI streaming interface carries, as defined in the USB Device Class
// Definition for MIDI Devices 1.0, section 6.1.2.
package descriptors

import "io"

type MIDIStreamingInterfaceDescriptorSubtype byte

const (
	MIDIStreamingInterfaceDescriptorSubtypeUndefined   MIDIStreamingInterfaceDescriptorSubtype = 0x00
	MIDIStreamingInterfaceDescriptorSubtypeMSHeader    MIDIStreamingInterfaceDescriptorSubtype = 0x01
	MIDIStreamingInterfaceDescriptorSubtypeMIDIInJack  MIDIStreamingInterfaceDescriptorSubtype = 0x02
	MIDIStreamingInterfaceDescriptorSubtypeMIDIOutJack MIDIStreamingInterfaceDescriptorSubtype = 0x03
	MIDIStreamingInterfaceDescriptorSubtypeElement     MIDIStreamingInterfaceDescriptorSubtype = 0x04
)

type JackType byte

const (
	JackTypeUndefined JackType = 0x00
	JackTypeEmbedded  JackType = 0x01
	JackTypeExternal  JackType = 0x02
)

func (jt JackType) String() string {
	switch jt {
	case JackTypeEmbedded:
		return "embedded"
	case JackTypeExternal:
		return "external"
	default:
		return "undefined"
	}
}

// MIDIStreamingDescriptor is any class-specific descriptor found in a
// MIDI streaming interface's descriptor block.
type MIDIStreamingDescriptor interface {
	Subtype() MIDIStreamingInterfaceDescriptorSubtype
}

// UnmarshalMIDIStreamingDescriptor parses one class-specific interface
// descriptor block, dispatching on its subtype byte.
func UnmarshalMIDIStreamingDescriptor(buf []byte) (MIDIStreamingDescriptor, error) {
	if len(buf) < 3 {
		return nil, io.ErrShortBuffer
	}
	if ClassSpecificDescriptorType(buf[1]) != ClassSpecificDescriptorTypeInterface {
		return nil, ErrInvalidDescriptor
	}
	var desc MIDIStreamingDescriptor
	switch MIDIStreamingInterfaceDescriptorSubtype(buf[2]) {
	case MIDIStreamingInterfaceDescriptorSubtypeMSHeader:
		desc = &MSHeaderDescriptor{}
	case MIDIStreamingInterfaceDescriptorSubtypeMIDIInJack:
		desc = &MIDIInJackDescriptor{}
	case MIDIStreamingInterfaceDescriptorSubtypeMIDIOutJack:
		desc = &MIDIOutJackDescriptor{}
	case MIDIStreamingInterfaceDescriptorSubtypeElement:
		desc = &ElementDescriptor{}
	default:
		return nil, ErrInvalidDescriptor
	}
	if err := desc.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return desc, nil
}

// MSHeaderDescriptor is the class-specific MS interface header, 6.1.2.1.
type MSHeaderDescriptor struct {
	BcdMSC      BinaryCodedDecimal // MS class specification release
	TotalLength uint16             // total class-specific descriptor bytes
}

func (mshd *MSHeaderDescriptor) Subtype() MIDIStreamingInterfaceDescriptorSubtype {
	return MIDIStreamingInterfaceDescriptorSubtypeMSHeader
}

func (mshd *MSHeaderDescriptor) UnmarshalBinary(buf []byte) error {
	if len(buf) < 7 {
		return io.ErrShortBuffer
	}
	if MIDIStreamingInterfaceDescriptorSubtype(buf[2]) != mshd.Subtype() {
		return ErrInvalidDescriptor
	}
	mshd.BcdMSC = BinaryCodedDecimal(uint16(buf[3]) | (uint16(buf[4]) << 8))
	mshd.TotalLength = uint16(buf[5]) | (uint16(buf[6]) << 8)
	return nil
}

// MIDIInJackDescriptor describes a point where MIDI enters the
// interface's element graph, 6.1.2.2. Embedded jacks face the USB side,
// external jacks a physical DIN connector.
type MIDIInJackDescriptor struct {
	JackType JackType
	JackID   uint8
	JackStr  uint8 // string descriptor index, 0 when absent
}

func (mijd *MIDIInJackDescriptor) Subtype() MIDIStreamingInterfaceDescriptorSubtype {
	return MIDIStreamingInterfaceDescriptorSubtypeMIDIInJack
}

func (mijd *MIDIInJackDescriptor) UnmarshalBinary(buf []byte) error {
	if len(buf) < 6 {
		return io.ErrShortBuffer
	}
	if MIDIStreamingInterfaceDescriptorSubtype(buf[2]) != mijd.Subtype() {
		return ErrInvalidDescriptor
	}
	mijd.JackType = JackType(buf[3])
	mijd.JackID = buf[4]
	mijd.JackStr = buf[5]
	return nil
}

// JackPin identifies one input connection of an out jack or element: the
// entity it is wired from and that entity's output pin.
type JackPin struct {
	SourceID  uint8
	SourcePin uint8
}

// MIDIOutJackDescriptor describes a point where MIDI leaves the element
// graph, 6.1.2.3.
type MIDIOutJackDescriptor struct {
	JackType JackType
	JackID   uint8
	Sources  []JackPin
	JackStr  uint8
}

func (mojd *MIDIOutJackDescriptor) Subtype() MIDIStreamingInterfaceDescriptorSubtype {
	return MIDIStreamingInterfaceDescriptorSubtypeMIDIOutJack
}

func (mojd *MIDIOutJackDescriptor) UnmarshalBinary(buf []byte) error {
	if len(buf) < 6 {
		return io.ErrShortBuffer
	}
	if MIDIStreamingInterfaceDescriptorSubtype(buf[2]) != mojd.Subtype() {
		return ErrInvalidDescriptor
	}
	mojd.JackType = JackType(buf[3])
	mojd.JackID = buf[4]
	nrInputPins := int(buf[5])
	if len(buf) < 7+2*nrInputPins {
		return io.ErrShortBuffer
	}
	mojd.Sources = make([]JackPin, nrInputPins)
	for i := 0; i < nrInputPins; i++ {
		mojd.Sources[i] = JackPin{SourceID: buf[6+2*i], SourcePin: buf[7+2*i]}
	}
	mojd.JackStr = buf[6+2*nrInputPins]
	return nil
}

// ElementDescriptor describes a processing entity between jacks, 6.1.2.4.
// The capability bitmap is opaque to this package.
type ElementDescriptor struct {
	ElementID       uint8
	Sources         []JackPin
	NrOutputPins    uint8
	InTerminalLink  uint8
	OutTerminalLink uint8
	ElementCaps     []byte
	ElementStr      uint8
}

func (ed *ElementDescriptor) Subtype() MIDIStreamingInterfaceDescriptorSubtype {
	return MIDIStreamingInterfaceDescriptorSubtypeElement
}

func (ed *ElementDescriptor) UnmarshalBinary(buf []byte) error {
	if len(buf) < 5 {
		return io.ErrShortBuffer
	}
	if MIDIStreamingInterfaceDescriptorSubtype(buf[2]) != ed.Subtype() {
		return ErrInvalidDescriptor
	}
	ed.ElementID = buf[3]
	nrInputPins := int(buf[4])
	// pins, bNrOutputPins, terminal links, bElCapsSize, iElement
	if len(buf) < 5+2*nrInputPins+5 {
		return io.ErrShortBuffer
	}
	ed.Sources = make([]JackPin, nrInputPins)
	for i := 0; i < nrInputPins; i++ {
		ed.Sources[i] = JackPin{SourceID: buf[5+2*i], SourcePin: buf[6+2*i]}
	}
	off := 5 + 2*nrInputPins
	ed.NrOutputPins = buf[off]
	ed.InTerminalLink = buf[off+1]
	ed.OutTerminalLink = buf[off+2]
	capsSize := int(buf[off+3])
	if len(buf) < off+4+capsSize+1 {
		return io.ErrShortBuffer
	}
	ed.ElementCaps = make([]byte, capsSize)
	copy(ed.ElementCaps, buf[off+4:off+4+capsSize])
	ed.ElementStr = buf[off+4+capsSize]
	return nil
}
