package flate

import (
	"io"

	"github.com/andybalholm/brotli/matchfinder"
	"github.com/lzkit/pack"
	"github.com/lzkit/pack/brotli"
)

// NewWriter returns a new pack.Writer that compresses data at the given level,
// in flate encoding. Levels 1–9 are available; levels outside this range will
// be replaced with the closest level available.
func NewWriter(w io.Writer, level int) *pack.Writer {
	return newWriter(w, level, NewEncoder())
}

// NewGZIPWriter returns a new pack.Writer that compresses data at the given
// level, in gzip encoding. Levels 1–9 are available; levels outside this range
// will be replaced by the closest level available.
func NewGZIPWriter(w io.Writer, level int) *pack.Writer {
	return newWriter(w, level, NewGZIPEncoder())
}

func newWriter(w io.Writer, level int, e pack.Encoder) *pack.Writer {
	return &pack.Writer{
		Dest:        w,
		MatchFinder: NewMatchFinder(level),
		Encoder:     e,
		BlockSize:   1 << 16,
	}
}

// NewMatchFinder returns a match finder whose matches fit in DEFLATE's
// window and length limits.
func NewMatchFinder(level int) pack.MatchFinder {
	if level < 1 {
		level = 1
	}
	if level > 9 {
		level = 9
	}

	switch level {
	case 1:
		return &brotli.MatchFinder{MatchFinder: matchfinder.M0{
			MaxDistance: maxDistance,
			MaxLength:   maxMatchLength,
		}}
	case 2, 3, 4:
		return &pack.HashChain{
			MaxDistance: maxDistance,
			MaxLength:   maxMatchLength,
			CutValue:    4 << (level - 2),
			ChainBlocks: true,
			Lazy:        level == 4,
		}
	}

	fastBytes := []int{5: 32, 6: 48, 7: 64, 8: 128, 9: maxMatchLength}[level]
	return &pack.BinaryTree{
		MaxDistance: maxDistance,
		MaxLength:   maxMatchLength,
		FastBytes:   fastBytes,
		MinLength:   minMatchLength,
		ChainBlocks: true,
		Lazy:        level >= 6,
	}
}
