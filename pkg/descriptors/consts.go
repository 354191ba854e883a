package descriptors

import "errors"

// ErrInvalidDescriptor reports a descriptor block whose type or subtype
// does not match what the caller tried to unmarshal it as.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

type ClassCode byte

const (
	ClassCodeAudio ClassCode = 0x01
)

type SubclassCode byte

const (
	SubclassCodeUndefined     SubclassCode = 0x00
	SubclassCodeAudioControl  SubclassCode = 0x01
	SubclassCodeAudioStream   SubclassCode = 0x02
	SubclassCodeMIDIStreaming SubclassCode = 0x03
)

type ClassSpecificDescriptorType byte

const (
	ClassSpecificDescriptorTypeUndefined     ClassSpecificDescriptorType = 0x20
	ClassSpecificDescriptorTypeDevice        ClassSpecificDescriptorType = 0x21
	ClassSpecificDescriptorTypeConfiguration ClassSpecificDescriptorType = 0x22
	ClassSpecificDescriptorTypeString        ClassSpecificDescriptorType = 0x23
	ClassSpecificDescriptorTypeInterface     ClassSpecificDescriptorType = 0x24
	ClassSpecificDescriptorTypeEndpoint      ClassSpecificDescriptorType = 0x25
)
