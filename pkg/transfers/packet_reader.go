package transfers

import (
	"fmt"
	"sync"

	usb "github.com/kevmo314/go-usb"

	"github.com/kevmo314/go-midi/pkg/packets"
)

const (
	// DefaultNumTransfers is the number of queued transfers for bulk
	// reads. MIDI runs at a trickle by USB standards; a short pipeline
	// is enough to never drop an URB between Next calls.
	DefaultNumTransfers = 8

	// URBBufferSize is the buffer size per URB. Full-speed MIDI devices
	// use 64-byte bulk endpoints, so one URB holds at most 16 packets.
	URBBufferSize = 64
)

// PacketReader delivers USB-MIDI event packets from a bulk IN endpoint.
// It keeps multiple URBs in flight and slices completed transfers into
// 4-byte packets, dropping the all-zero padding packets devices use to
// fill out a transfer.
type PacketReader struct {
	handle    *usb.DeviceHandle
	endpoint  uint8
	transfers []*usb.AsyncBulkTransfer

	mu       sync.Mutex
	nextRead int // index of the next transfer to reap
	pending  [URBBufferSize]byte
	head, n  int // unread window into pending
	closed   bool
}

// NewPacketReader creates a packet reader with DefaultNumTransfers
// queued URBs on endpointAddress.
func NewPacketReader(handle *usb.DeviceHandle, endpointAddress uint8) (*PacketReader, error) {
	return NewPacketReaderWithCount(handle, endpointAddress, DefaultNumTransfers)
}

// NewPacketReaderWithCount creates a packet reader with a specific
// number of queued URBs.
func NewPacketReaderWithCount(handle *usb.DeviceHandle, endpointAddress uint8, numTransfers int) (*PacketReader, error) {
	if numTransfers < 1 {
		numTransfers = 1
	}
	r := &PacketReader{
		handle:    handle,
		endpoint:  endpointAddress,
		transfers: make([]*usb.AsyncBulkTransfer, numTransfers),
	}
	for i := 0; i < numTransfers; i++ {
		t, err := handle.NewAsyncBulkTransfer(endpointAddress, URBBufferSize)
		if err != nil {
			for j := 0; j < i; j++ {
				r.transfers[j].Cancel()
			}
			return nil, fmt.Errorf("failed to create async transfer %d: %w", i, err)
		}
		r.transfers[i] = t
	}
	for i := 0; i < numTransfers; i++ {
		if err := r.transfers[i].Submit(); err != nil {
			for j := range r.transfers {
				r.transfers[j].Cancel()
			}
			return nil, fmt.Errorf("failed to submit initial transfer %d: %w", i, err)
		}
	}
	return r, nil
}

// Next blocks until the device delivers the next non-padding packet.
func (r *PacketReader) Next() (packets.Packet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if r.closed {
			return packets.Packet{}, fmt.Errorf("reader closed")
		}
		for r.n-r.head >= 4 {
			var p packets.Packet
			copy(p[:], r.pending[r.head:r.head+4])
			r.head += 4
			if p == (packets.Packet{}) {
				continue
			}
			return p, nil
		}

		t := r.transfers[r.nextRead]
		data, err := t.Wait()
		if err != nil {
			return packets.Packet{}, fmt.Errorf("bulk read failed: %w", err)
		}
		// Copy before resubmitting so the kernel cannot race the slice.
		r.head, r.n = 0, copy(r.pending[:], data)
		if err := t.Submit(); err != nil {
			return packets.Packet{}, fmt.Errorf("resubmitting transfer: %w", err)
		}
		r.nextRead = (r.nextRead + 1) % len(r.transfers)
	}
}

// Close cancels all pending transfers and releases resources.
func (r *PacketReader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	for _, t := range r.transfers {
		t.Cancel()
	}
	for _, t := range r.transfers {
		t.Wait() // drain cancellations
	}
	return nil
}
