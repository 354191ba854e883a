package descriptors

import "io"

type MIDIStreamingEndpointDescriptorSubtype byte

const (
	MIDIStreamingEndpointDescriptorSubtypeUndefined MIDIStreamingEndpointDescriptorSubtype = 0x00
	MIDIStreamingEndpointDescriptorSubtypeGeneral   MIDIStreamingEndpointDescriptorSubtype = 0x01
)

// ClassSpecificMIDIStreamingEndpointDescriptor lists the embedded jacks
// a bulk endpoint multiplexes, as defined in the USB MIDI 1.0 spec,
// section 6.2.2. The jack at index i carries cable number i, so the jack
// count is the endpoint's cable count.
type ClassSpecificMIDIStreamingEndpointDescriptor struct {
	JackIDs []uint8
}

func (ep *ClassSpecificMIDIStreamingEndpointDescriptor) Subtype() MIDIStreamingEndpointDescriptorSubtype {
	return MIDIStreamingEndpointDescriptorSubtypeGeneral
}

// NumCables returns the number of virtual cables the endpoint carries.
func (ep *ClassSpecificMIDIStreamingEndpointDescriptor) NumCables() int {
	return len(ep.JackIDs)
}

func (ep *ClassSpecificMIDIStreamingEndpointDescriptor) UnmarshalBinary(buf []byte) error {
	if len(buf) < 4 {
		return io.ErrShortBuffer
	}
	if ClassSpecificDescriptorType(buf[1]) != ClassSpecificDescriptorTypeEndpoint ||
		MIDIStreamingEndpointDescriptorSubtype(buf[2]) != ep.Subtype() {
		return ErrInvalidDescriptor
	}
	numJacks := int(buf[3])
	if len(buf) < 4+numJacks {
		return io.ErrShortBuffer
	}
	ep.JackIDs = make([]uint8, numJacks)
	copy(ep.JackIDs, buf[4:4+numJacks])
	return nil
}
