package descriptors

import "fmt"

// BinaryCodedDecimal is a little-endian BCD version number as USB
// descriptors carry them, e.g. 0x0100 for release 1.00.
type BinaryCodedDecimal uint16

func (bcd BinaryCodedDecimal) String() string {
	return fmt.Sprintf("%x.%02x", uint16(bcd)>>8, uint16(bcd)&0xFF)
}
