package lz4

import (
	"encoding/binary"

	"github.com/lzkit/pack"
)

const (
	minMatch    = 4
	maxDistance = 65535

	// The last match must start at least mfLimit bytes before the end of
	// the block, and the last lastLiterals bytes must be literals.
	mfLimit      = 12
	lastLiterals = 5
)

// A BlockEncoder implements the pack.Encoder interface, writing in the LZ4
// block format. Matches shorter than 4 bytes or farther than 65535 bytes
// are written as literals.
type BlockEncoder struct{}

func (BlockEncoder) Reset() {}

func (BlockEncoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	trailing := 0
	for len(matches) > 0 {
		last := matches[len(matches)-1]
		if trailing >= lastLiterals && trailing+last.Length >= mfLimit {
			break
		}
		matches = matches[:len(matches)-1]
		trailing += last.Unmatched + last.Length
	}

	litStart, pos := 0, 0
	for _, m := range matches {
		pos += m.Unmatched
		if m.Length < minMatch || m.Distance > maxDistance {
			pos += m.Length
			continue
		}
		dst = appendSequence(dst, src[litStart:pos], m.Length, m.Distance)
		pos += m.Length
		litStart = pos
	}

	// The final sequence has literals only.
	lit := src[litStart:]
	dst = append(dst, tokenNibble(len(lit))<<4)
	if len(lit) >= 15 {
		dst = appendInt(dst, len(lit)-15)
	}
	return append(dst, lit...)
}

func appendSequence(dst, lit []byte, length, distance int) []byte {
	ml := length - minMatch
	dst = append(dst, tokenNibble(len(lit))<<4|tokenNibble(ml))
	if len(lit) >= 15 {
		dst = appendInt(dst, len(lit)-15)
	}
	dst = append(dst, lit...)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(distance))
	if ml >= 15 {
		dst = appendInt(dst, ml-15)
	}
	return dst
}

func tokenNibble(n int) byte {
	return byte(min(n, 15))
}

// appendInt appends n to dst in LZ4's variable-length integer format.
func appendInt(dst []byte, n int) []byte {
	for n >= 255 {
		dst = append(dst, 255)
		n -= 255
	}
	return append(dst, byte(n))
}
