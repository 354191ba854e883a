//go:build !linux

package midi

import "io"

// OpenSerialPort requires the Linux termios2 interface to reach the
// nonstandard MIDI baud rate.
func OpenSerialPort(path string) (io.ReadWriteCloser, error) {
	return nil, ErrUnsupported
}
