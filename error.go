package midi

import (
	"errors"

	"github.com/kevmo314/go-midi/pkg/descriptors"
)

// ErrInvalidDescriptor reports a malformed class-specific descriptor.
var ErrInvalidDescriptor = descriptors.ErrInvalidDescriptor

// ErrUnsupported reports a transport the current platform cannot open.
var ErrUnsupported = errors.New("not supported on this platform")
