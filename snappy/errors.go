package snappy

import "github.com/pkg/errors"

var (
	// ErrCorrupt reports that the input is invalid.
	ErrCorrupt = errors.New("snappy: corrupt input")
	// ErrChecksum reports a chunk whose data does not match its checksum.
	ErrChecksum = errors.New("snappy: checksum mismatch")
	// ErrTooLarge reports a block whose decoded length is too large.
	ErrTooLarge = errors.New("snappy: decoded block is too large")
	// ErrUnsupported reports an unskippable chunk type this package does not
	// know.
	ErrUnsupported = errors.New("snappy: unsupported input")
)
