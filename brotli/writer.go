package brotli

import (
	"io"

	"github.com/andybalholm/brotli/matchfinder"
	"github.com/lzkit/pack"
)

// NewWriter returns a new pack.Writer that compresses data at the given level.
// Levels 0–9 are available. Levels outside this range will be replaced with
// the closest level available.
//
// Levels 0–4 use the hash-table match finders from the matchfinder package.
// Levels 5 and up use this module's hash chain and binary tree.
func NewWriter(w io.Writer, level int) *pack.Writer {
	return &pack.Writer{
		Dest:        w,
		MatchFinder: NewMatchFinder(level),
		Encoder:     &Encoder{},
		BlockSize:   1 << 16,
	}
}

// NewMatchFinder returns the match finder that NewWriter uses for level.
func NewMatchFinder(level int) pack.MatchFinder {
	if level < 0 {
		level = 0
	}
	if level > 9 {
		level = 9
	}

	switch level {
	case 0, 1:
		return &MatchFinder{MatchFinder: matchfinder.M0{Lazy: level == 1}}
	case 2, 3, 4:
		return &MatchFinder{MatchFinder: &matchfinder.M4{
			MaxDistance:     1 << 20,
			ChainLength:     level - 2,
			HashLen:         6,
			DistanceBitCost: 57,
		}}
	case 5:
		return &pack.HashChain{
			MaxDistance: 1 << 18,
			CutValue:    16,
			ChainBlocks: true,
			Lazy:        true,
		}
	case 6:
		return &pack.BinaryTree{
			MaxDistance: 1 << 18,
			FastBytes:   32,
			ChainBlocks: true,
		}
	case 7:
		return &pack.BinaryTree{
			MaxDistance: 1 << 20,
			FastBytes:   64,
			ChainBlocks: true,
			Lazy:        true,
		}
	case 8:
		return &pack.BinaryTree{
			MaxDistance: 1 << 20,
			FastBytes:   128,
			ChainBlocks: true,
			Lazy:        true,
		}
	default:
		return &pack.BinaryTree{
			MaxDistance: 1 << 22,
			MaxLength:   1 << 10,
			FastBytes:   273,
			CutValue:    64,
			ChainBlocks: true,
			Lazy:        true,
		}
	}
}
