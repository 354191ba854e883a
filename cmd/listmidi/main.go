// listmidi scans the USB bus for MIDI streaming interfaces and prints
// their jack topology and cable counts.
package main

import (
	"fmt"
	"log"

	usb "github.com/kevmo314/go-usb"

	midi "github.com/kevmo314/go-midi"
)

func main() {
	devices, err := usb.DeviceList()
	if err != nil {
		log.Fatalf("Failed to list devices: %v", err)
	}

	found := 0
	for _, dev := range devices {
		handle, err := dev.Open()
		if err != nil {
			continue
		}

		dmidi := &scanned{path: dev.Path}
		if dev.SysfsStrings != nil {
			dmidi.product = dev.SysfsStrings.Product
		}
		dmidi.vid, dmidi.pid = dev.Descriptor.VendorID, dev.Descriptor.ProductID

		config, err := handle.GetActiveConfigDescriptor()
		if err != nil {
			handle.Close()
			continue
		}
		hasMIDI := false
		for _, iface := range config.Interfaces {
			for _, alt := range iface.AltSettings {
				// class Audio (0x01), subclass MIDI Streaming (0x03)
				if alt.InterfaceClass == 0x01 && alt.InterfaceSubClass == 0x03 {
					hasMIDI = true
				}
			}
		}
		handle.Close()
		if !hasMIDI {
			continue
		}

		found++
		dmidi.print()

		// Reopen through the package to parse topology.
		h, err := dev.Open()
		if err != nil {
			fmt.Printf("  (could not reopen: %v)\n\n", err)
			continue
		}
		info, err := wrapAndScan(h)
		if err != nil {
			fmt.Printf("  (could not parse: %v)\n\n", err)
			h.Close()
			continue
		}
		for _, msi := range info.StreamingInterfaces {
			fmt.Printf("  Interface %d (MS %s):\n", msi.InterfaceNumber(), msi.MSCVersionString())
			for _, j := range msi.InJacks {
				fmt.Printf("    IN  jack %d (%s)\n", j.JackID, j.JackType)
			}
			for _, j := range msi.OutJacks {
				fmt.Printf("    OUT jack %d (%s), %d source(s)\n", j.JackID, j.JackType, len(j.Sources))
			}
			if msi.EndpointIn != 0 {
				fmt.Printf("    bulk IN 0x%02x, %d cable(s)\n", msi.EndpointIn, msi.NumRxCables)
			}
			if msi.EndpointOut != 0 {
				fmt.Printf("    bulk OUT 0x%02x, %d cable(s)\n", msi.EndpointOut, msi.NumTxCables)
			}
		}
		h.Close()
		fmt.Println()
	}

	if found == 0 {
		fmt.Println("No USB-MIDI streaming interfaces found.")
	}
}

type scanned struct {
	path     string
	product  string
	vid, pid uint16
}

func (s *scanned) print() {
	fmt.Printf("%s %04x:%04x", s.path, s.vid, s.pid)
	if s.product != "" {
		fmt.Printf(" (%s)", s.product)
	}
	fmt.Println()
}

// wrapAndScan parses MIDI topology from an open handle's descriptors.
func wrapAndScan(handle *usb.DeviceHandle) (*midi.DeviceInfo, error) {
	dev := midi.WrapHandle(handle)
	return dev.DeviceInfo()
}
