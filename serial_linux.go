//go:build linux

package midi

import (
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SerialBaudRate is the DIN MIDI transmission rate. It is not a
// standard tty speed, which is why the port setup goes through the
// termios2 BOTHER interface.
const SerialBaudRate = 31250

// OpenSerialPort opens a serial DIN MIDI port in raw 8-N-1 mode at the
// MIDI baud rate. The returned stream carries raw MIDI bytes for
// pkg/wire's Parser and Encoder.
func OpenSerialPort(path string) (io.ReadWriteCloser, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}

	t := unix.Termios{
		Cflag:  unix.BOTHER | unix.CS8 | unix.CREAD | unix.CLOCAL,
		Ispeed: SerialBaudRate,
		Ospeed: SerialBaudRate,
	}
	// Blocking reads, one byte at a time: the parser is fed per byte.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.TCSETS2, uintptr(unsafe.Pointer(&t))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("setting termios2 on %s: %w", path, errno)
	}
	return f, nil
}
