package lz4

import "github.com/pkg/errors"

var (
	// ErrCorrupt reports that the input is not valid LZ4 data.
	ErrCorrupt = errors.New("lz4: corrupt input")
	// ErrChecksum reports a header, block or content checksum mismatch.
	ErrChecksum = errors.New("lz4: checksum mismatch")
)
