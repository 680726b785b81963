// Package brotli connects the match finders in this module to the Brotli
// encoder from github.com/andybalholm/brotli.
package brotli

import (
	"github.com/andybalholm/brotli"
	"github.com/andybalholm/brotli/matchfinder"
	"github.com/lzkit/pack"
)

// An Encoder implements the pack.Encoder interface, writing in Brotli format.
//
// A Brotli meta-block may not be empty, and the last one carries the
// end-of-stream flag. So each block is held back until the next call to
// Encode shows whether it is the last one.
type Encoder struct {
	enc     brotli.Encoder
	started bool

	pending        []byte
	pendingMatches []matchfinder.Match
}

func (e *Encoder) Reset() {
	e.enc.Reset()
	e.started = false
	e.pending = e.pending[:0]
	e.pendingMatches = e.pendingMatches[:0]
}

func (e *Encoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if len(src) == 0 {
		if !lastBlock {
			return dst
		}
		if len(e.pending) == 0 {
			if e.started {
				// Only reachable after an earlier last block.
				return dst
			}
			// A complete stream with no data: WBITS 24, then ISLAST and
			// ISLASTEMPTY.
			return append(dst, 0x3f)
		}
		dst = e.enc.Encode(dst, e.pending, e.pendingMatches, true)
		e.pending = e.pending[:0]
		return dst
	}

	if len(e.pending) > 0 {
		dst = e.enc.Encode(dst, e.pending, e.pendingMatches, false)
	}
	e.started = true
	if lastBlock {
		e.pending = e.pending[:0]
		e.pendingMatches = convertMatches(e.pendingMatches[:0], matches)
		return e.enc.Encode(dst, src, e.pendingMatches, true)
	}
	e.pending = append(e.pending[:0], src...)
	e.pendingMatches = convertMatches(e.pendingMatches[:0], matches)
	return dst
}

// maxDistance is the farthest back a match can reach with the 24-bit
// window the encoder declares in the stream header.
const maxDistance = 1<<24 - 16

// convertMatches translates matches to the brotli package's type. A match
// reaching past maxDistance becomes literals.
func convertMatches(dst []matchfinder.Match, matches []pack.Match) []matchfinder.Match {
	literals := 0
	for _, m := range matches {
		if m.Distance > maxDistance {
			literals += m.Unmatched + m.Length
			continue
		}
		dst = append(dst, matchfinder.Match{
			Unmatched: literals + m.Unmatched,
			Length:    m.Length,
			Distance:  m.Distance,
		})
		literals = 0
	}
	if literals > 0 {
		dst = append(dst, matchfinder.Match{Unmatched: literals})
	}
	return dst
}
