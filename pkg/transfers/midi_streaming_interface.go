// Package transfers implements the host-side USB transport for MIDI
// streaming interfaces: descriptor topology parsed from the interface's
// class-specific block and a bulk reader delivering 4-byte event packets.
package transfers

import (
	"fmt"

	usb "github.com/kevmo314/go-usb"

	"github.com/kevmo314/go-midi/pkg/descriptors"
)

// MIDIStreamingInterface is one interface with class Audio, subclass
// MIDI Streaming, together with its parsed jack/element topology and
// bulk endpoints. Values are produced by the root package's DeviceInfo.
type MIDIStreamingInterface struct {
	handle      *usb.DeviceHandle
	ifaceNumber uint8
	bcdMSC      descriptors.BinaryCodedDecimal

	InJacks  []*descriptors.MIDIInJackDescriptor
	OutJacks []*descriptors.MIDIOutJackDescriptor
	Elements []*descriptors.ElementDescriptor

	// EndpointIn and EndpointOut are the bulk endpoint addresses toward
	// and from the host, zero when the interface lacks the direction.
	EndpointIn  uint8
	EndpointOut uint8

	// NumRxCables and NumTxCables are the virtual cable counts of the
	// IN and OUT endpoints, from their class-specific descriptors.
	NumRxCables int
	NumTxCables int
}

// NewMIDIStreamingInterface wraps an interface before descriptor
// parsing. The caller feeds it ParseDescriptorBlock and ParseEndpoint.
func NewMIDIStreamingInterface(handle *usb.DeviceHandle, ifaceNumber uint8) *MIDIStreamingInterface {
	return &MIDIStreamingInterface{handle: handle, ifaceNumber: ifaceNumber}
}

// InterfaceNumber returns the interface number.
func (msi *MIDIStreamingInterface) InterfaceNumber() uint8 { return msi.ifaceNumber }

// MSCVersionString returns the MIDI streaming class release, e.g. "1.00".
func (msi *MIDIStreamingInterface) MSCVersionString() string { return msi.bcdMSC.String() }

// WalkDescriptorBlocks iterates the length-prefixed descriptor blocks in
// a class-specific descriptor buffer, calling fn with each block. A zero
// length byte ends the walk, since it can never advance.
func WalkDescriptorBlocks(buf []byte, fn func(block []byte) error) error {
	for i := 0; i < len(buf); {
		n := int(buf[i])
		if n < 2 || i+n > len(buf) {
			return nil
		}
		if err := fn(buf[i : i+n]); err != nil {
			return err
		}
		i += n
	}
	return nil
}

// ParseDescriptorBlock consumes one class-specific interface descriptor
// block (type 0x24). Unknown subtypes are skipped rather than rejected;
// devices routinely carry vendor extensions.
func (msi *MIDIStreamingInterface) ParseDescriptorBlock(block []byte) error {
	if len(block) < 3 || descriptors.ClassSpecificDescriptorType(block[1]) != descriptors.ClassSpecificDescriptorTypeInterface {
		return nil
	}
	desc, err := descriptors.UnmarshalMIDIStreamingDescriptor(block)
	if err != nil {
		if err == descriptors.ErrInvalidDescriptor {
			return nil
		}
		return fmt.Errorf("parsing MS interface descriptor: %w", err)
	}
	switch d := desc.(type) {
	case *descriptors.MSHeaderDescriptor:
		msi.bcdMSC = d.BcdMSC
	case *descriptors.MIDIInJackDescriptor:
		msi.InJacks = append(msi.InJacks, d)
	case *descriptors.MIDIOutJackDescriptor:
		msi.OutJacks = append(msi.OutJacks, d)
	case *descriptors.ElementDescriptor:
		msi.Elements = append(msi.Elements, d)
	}
	return nil
}

// ParseEndpoint records a bulk endpoint by its address and parses the
// class-specific endpoint descriptor (type 0x25) from extra, which sets
// the direction's cable count.
func (msi *MIDIStreamingInterface) ParseEndpoint(address uint8, extra []byte) error {
	in := address&0x80 != 0
	if in {
		msi.EndpointIn = address
	} else {
		msi.EndpointOut = address
	}
	return WalkDescriptorBlocks(extra, func(block []byte) error {
		if descriptors.ClassSpecificDescriptorType(block[1]) != descriptors.ClassSpecificDescriptorTypeEndpoint {
			return nil
		}
		var ep descriptors.ClassSpecificMIDIStreamingEndpointDescriptor
		if err := ep.UnmarshalBinary(block); err != nil {
			return fmt.Errorf("parsing MS endpoint descriptor: %w", err)
		}
		if in {
			msi.NumRxCables = ep.NumCables()
		} else {
			msi.NumTxCables = ep.NumCables()
		}
		return nil
	})
}

// ClaimPacketReader opens a packet reader on the interface's bulk IN
// endpoint.
func (msi *MIDIStreamingInterface) ClaimPacketReader() (*PacketReader, error) {
	if msi.EndpointIn == 0 {
		return nil, fmt.Errorf("interface %d has no bulk IN endpoint", msi.ifaceNumber)
	}
	return NewPacketReader(msi.handle, msi.EndpointIn)
}
