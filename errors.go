package pack

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned when a Config holds a value outside its
	// allowed range.
	ErrInvalidConfig = errors.New("pack: invalid configuration")

	errWriterClosed = errors.New("pack: write to closed Writer")
)
