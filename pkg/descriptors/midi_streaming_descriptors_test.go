package descriptors

import (
	"errors"
	"io"
	"testing"
)

func TestMSHeaderDescriptor_Unmarshal(t *testing.T) {
	buf := []byte{
		0x07,       // bLength
		0x24,       // CS_INTERFACE
		0x01,       // MS_HEADER
		0x00, 0x01, // bcdMSC 1.00
		0x41, 0x00, // wTotalLength 65
	}
	var d MSHeaderDescriptor
	if err := d.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if d.BcdMSC != 0x0100 {
		t.Errorf("BcdMSC = 0x%04X, want 0x0100", uint16(d.BcdMSC))
	}
	if got := d.BcdMSC.String(); got != "1.00" {
		t.Errorf("BcdMSC.String() = %q, want %q", got, "1.00")
	}
	if d.TotalLength != 65 {
		t.Errorf("TotalLength = %d, want 65", d.TotalLength)
	}
}

func TestMIDIInJackDescriptor_Unmarshal(t *testing.T) {
	buf := []byte{
		0x06, // bLength
		0x24, // CS_INTERFACE
		0x02, // MIDI_IN_JACK
		0x01, // EMBEDDED
		0x01, // bJackID
		0x00, // iJack
	}
	var d MIDIInJackDescriptor
	if err := d.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if d.JackType != JackTypeEmbedded {
		t.Errorf("JackType = %v, want embedded", d.JackType)
	}
	if d.JackID != 1 {
		t.Errorf("JackID = %d, want 1", d.JackID)
	}
}

func TestMIDIOutJackDescriptor_Unmarshal(t *testing.T) {
	buf := []byte{
		0x09,       // bLength
		0x24,       // CS_INTERFACE
		0x03,       // MIDI_OUT_JACK
		0x02,       // EXTERNAL
		0x04,       // bJackID
		0x01,       // bNrInputPins
		0x01, 0x01, // source jack 1, pin 1
		0x00, // iJack
	}
	var d MIDIOutJackDescriptor
	if err := d.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if d.JackType != JackTypeExternal {
		t.Errorf("JackType = %v, want external", d.JackType)
	}
	if d.JackID != 4 {
		t.Errorf("JackID = %d, want 4", d.JackID)
	}
	if len(d.Sources) != 1 || d.Sources[0] != (JackPin{SourceID: 1, SourcePin: 1}) {
		t.Errorf("Sources = %v, want [{1 1}]", d.Sources)
	}
}

func TestElementDescriptor_Unmarshal(t *testing.T) {
	buf := []byte{
		0x0B,       // bLength
		0x24,       // CS_INTERFACE
		0x04,       // ELEMENT
		0x0A,       // bElementID
		0x01,       // bNrInputPins
		0x02, 0x01, // source jack 2, pin 1
		0x01, // bNrOutputPins
		0x00, // bInTerminalLink
		0x00, // bOutTerminalLink
		0x01, // bElCapsSize
		0x01, // bmElementCaps: custom undefined
		0x00, // iElement
	}
	var d ElementDescriptor
	if err := d.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if d.ElementID != 0x0A {
		t.Errorf("ElementID = %d, want 10", d.ElementID)
	}
	if len(d.Sources) != 1 || d.Sources[0] != (JackPin{SourceID: 2, SourcePin: 1}) {
		t.Errorf("Sources = %v, want [{2 1}]", d.Sources)
	}
	if d.NrOutputPins != 1 {
		t.Errorf("NrOutputPins = %d, want 1", d.NrOutputPins)
	}
	if len(d.ElementCaps) != 1 || d.ElementCaps[0] != 0x01 {
		t.Errorf("ElementCaps = %v, want [0x01]", d.ElementCaps)
	}
}

func TestClassSpecificMIDIStreamingEndpointDescriptor_Unmarshal(t *testing.T) {
	buf := []byte{
		0x06,       // bLength
		0x25,       // CS_ENDPOINT
		0x01,       // MS_GENERAL
		0x02,       // bNumEmbMIDIJack
		0x01, 0x05, // embedded jack IDs
	}
	var d ClassSpecificMIDIStreamingEndpointDescriptor
	if err := d.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if d.NumCables() != 2 {
		t.Errorf("NumCables() = %d, want 2", d.NumCables())
	}
	if d.JackIDs[0] != 1 || d.JackIDs[1] != 5 {
		t.Errorf("JackIDs = %v, want [1 5]", d.JackIDs)
	}
}

func TestUnmarshalMIDIStreamingDescriptor_Dispatch(t *testing.T) {
	desc, err := UnmarshalMIDIStreamingDescriptor([]byte{0x06, 0x24, 0x02, 0x01, 0x01, 0x00})
	if err != nil {
		t.Fatalf("UnmarshalMIDIStreamingDescriptor failed: %v", err)
	}
	if _, ok := desc.(*MIDIInJackDescriptor); !ok {
		t.Errorf("got %T, want *MIDIInJackDescriptor", desc)
	}
}

func TestUnmarshal_Rejections(t *testing.T) {
	var header MSHeaderDescriptor
	if err := header.UnmarshalBinary([]byte{0x07, 0x24, 0x01}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("short header: err = %v, want io.ErrShortBuffer", err)
	}
	if err := header.UnmarshalBinary([]byte{0x06, 0x24, 0x02, 0x01, 0x01, 0x00, 0x00}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("wrong subtype: err = %v, want ErrInvalidDescriptor", err)
	}
	if _, err := UnmarshalMIDIStreamingDescriptor([]byte{0x06, 0x25, 0x01, 0x00, 0x00, 0x00}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("endpoint block as interface: err = %v, want ErrInvalidDescriptor", err)
	}
	var out MIDIOutJackDescriptor
	if err := out.UnmarshalBinary([]byte{0x09, 0x24, 0x03, 0x01, 0x04, 0x05, 0x01}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("truncated pins: err = %v, want io.ErrShortBuffer", err)
	}
}
