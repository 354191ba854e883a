//go:build !windows

package midi

import (
	"sync/atomic"

	usb "github.com/kevmo314/go-usb"
)

// NewDevice wraps an already-open usbfs file descriptor, e.g. from
// /dev/bus/usb or Android's UsbDeviceConnection. The caller keeps
// ownership of the descriptor's lifetime beyond Close.
func NewDevice(fd uintptr) (*Device, error) {
	dev := &Device{closed: &atomic.Bool{}}

	handle, err := usb.WrapSysDevice(int(fd))
	if err != nil {
		return nil, err
	}
	dev.handle = handle

	return dev, nil
}

// WrapHandle wraps an already-open device handle. Close closes the
// handle.
func WrapHandle(handle *usb.DeviceHandle) *Device {
	return &Device{handle: handle, closed: &atomic.Bool{}}
}
