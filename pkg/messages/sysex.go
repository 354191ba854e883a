package messages

// SysExBuffer stages a System Exclusive payload in caller-provided storage.
// It never grows: Append reports when the payload no longer fits, and the
// buffer keeps counting the dropped bytes so the truncation is observable.
//
// A nil *SysExBuffer is valid and behaves as a buffer of capacity zero,
// which lets a parser run without SysEx storage at all (every payload byte
// overflows, the stream still stays in sync).
type SysExBuffer struct {
	data    []byte
	n       int
	dropped int
}

// NewSysExBuffer returns a buffer backed by storage. The caller keeps
// ownership of storage and must not touch it while a message borrowed
// from the buffer is still in use.
func NewSysExBuffer(storage []byte) *SysExBuffer {
	return &SysExBuffer{data: storage}
}

// Reset empties the buffer. The backing storage is retained.
func (b *SysExBuffer) Reset() {
	if b == nil {
		return
	}
	b.n = 0
	b.dropped = 0
}

// Append adds one payload byte. It returns false, and counts the byte as
// dropped, once the buffer is at capacity.
func (b *SysExBuffer) Append(v byte) bool {
	if b == nil || b.n == len(b.data) {
		if b != nil {
			b.dropped++
		}
		return false
	}
	b.data[b.n] = v
	b.n++
	return true
}

// Bytes returns the accumulated payload. The slice aliases the backing
// storage and is invalidated by Reset and Append.
func (b *SysExBuffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data[:b.n]
}

// Len returns the number of buffered payload bytes.
func (b *SysExBuffer) Len() int {
	if b == nil {
		return 0
	}
	return b.n
}

// Cap returns the buffer capacity.
func (b *SysExBuffer) Cap() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Dropped returns the number of bytes lost to overflow since the last
// Reset.
func (b *SysExBuffer) Dropped() int {
	if b == nil {
		return 0
	}
	return b.dropped
}
