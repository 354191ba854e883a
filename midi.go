//go:build !windows

// Package midi provides a MIDI 1.0 message codec for serial (DIN) and
// USB-MIDI transports, plus host-side access to USB-MIDI streaming
// interfaces through usbfs. The codec packages are allocation-free and
// transport-agnostic:
//
//   - pkg/messages: the message model and SysEx staging buffer
//   - pkg/wire: the serial byte-stream parser and encoder
//   - pkg/packets: the USB-MIDI event packet codec
//
// This package wraps an already-open USB device file descriptor and
// discovers its MIDI streaming interfaces.
package midi

import (
	"fmt"
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"

	"github.com/kevmo314/go-midi/pkg/descriptors"
	"github.com/kevmo314/go-midi/pkg/transfers"
)

// Device is an open USB device that may expose MIDI streaming
// interfaces.
type Device struct {
	handle *usb.DeviceHandle
	closed *atomic.Bool
}

func (d *Device) Close() error {
	d.closed.Store(true)
	return d.handle.Close()
}

// DeviceInfo is the parsed MIDI topology of a device's active
// configuration.
type DeviceInfo struct {
	handle     *usb.DeviceHandle
	configDesc *usb.ConfigDescriptor

	StreamingInterfaces []*transfers.MIDIStreamingInterface
}

func (info *DeviceInfo) GetHandle() *usb.DeviceHandle {
	return info.handle
}

// DeviceInfo walks the active configuration for interfaces with class
// Audio and subclass MIDI Streaming and parses their class-specific
// descriptor blocks into jack topology, endpoints and cable counts.
func (d *Device) DeviceInfo() (*DeviceInfo, error) {
	configDesc, err := d.handle.ConfigDescriptorByValue(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get config descriptor: %w", err)
	}
	info := &DeviceInfo{handle: d.handle, configDesc: configDesc}

	for _, iface := range configDesc.Interfaces {
		if len(iface.AltSettings) == 0 {
			continue
		}
		alt := &iface.AltSettings[0]
		if descriptors.ClassCode(alt.InterfaceClass) != descriptors.ClassCodeAudio ||
			descriptors.SubclassCode(alt.InterfaceSubClass) != descriptors.SubclassCodeMIDIStreaming {
			continue
		}

		msi := transfers.NewMIDIStreamingInterface(d.handle, alt.InterfaceNumber)
		if err := transfers.WalkDescriptorBlocks(alt.Extra, msi.ParseDescriptorBlock); err != nil {
			return nil, fmt.Errorf("interface %d: %w", alt.InterfaceNumber, err)
		}
		for i := range alt.Endpoints {
			ep := &alt.Endpoints[i]
			if err := msi.ParseEndpoint(ep.EndpointAddr, ep.Extra); err != nil {
				return nil, fmt.Errorf("interface %d endpoint 0x%02x: %w", alt.InterfaceNumber, ep.EndpointAddr, err)
			}
		}

		if len(msi.InJacks) > 0 || len(msi.OutJacks) > 0 {
			info.StreamingInterfaces = append(info.StreamingInterfaces, msi)
		}
	}

	return info, nil
}
