package lz

import "github.com/pkg/errors"

var (
	// ErrHistoryTooLarge is returned by Create when the requested history
	// size does not leave room for position normalization in 32 bits.
	ErrHistoryTooLarge = errors.New("lz: history size too large")

	// ErrNoSink is returned when an OutWindow has unflushed bytes but no
	// writer attached.
	ErrNoSink = errors.New("lz: output window has no sink")
)
