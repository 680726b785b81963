package flate

import (
	"math/bits"

	"github.com/lzkit/pack"
)

const (
	minMatchLength = 3
	maxMatchLength = 258
	maxDistance    = 1 << 15

	endOfBlock = 256
)

// hcode is a Huffman code stored bit-reversed, ready to be written LSB
// first.
type hcode struct {
	code uint16
	len  uint8
}

// fixedLiteralCodes is the literal/length alphabet of a fixed-Huffman
// block (RFC 1951 section 3.2.6).
var fixedLiteralCodes = func() (t [288]hcode) {
	for v := range t {
		var code uint16
		var n uint8
		switch {
		case v < 144:
			code, n = uint16(0x30+v), 8
		case v < 256:
			code, n = uint16(0x190+v-144), 9
		case v < 280:
			code, n = uint16(v-256), 7
		default:
			code, n = uint16(0xc0+v-280), 8
		}
		t[v] = hcode{bits.Reverse16(code) >> (16 - n), n}
	}
	return t
}()

// lengthCode returns the length symbol for a match of length l, along with
// its extra bits and their count.
func lengthCode(l int) (sym int, extra uint32, nExtra uint) {
	x := l - minMatchLength
	switch {
	case x < 8:
		return 257 + x, 0, 0
	case l == maxMatchLength:
		return 285, 0, 0
	}
	nb := uint(bits.Len(uint(x))) - 1
	nExtra = nb - 2
	mid := (x >> nExtra) & 3
	base := (4 | mid) << nExtra
	return 257 + 4*int(nb-1) + mid, uint32(x - base), nExtra
}

// distanceCode returns the distance symbol for distance d, along with its
// extra bits and their count.
func distanceCode(d int) (sym int, extra uint32, nExtra uint) {
	x := d - 1
	if x < 4 {
		return x, 0, 0
	}
	nb := uint(bits.Len(uint(x))) - 1
	nExtra = nb - 1
	low := (x >> nExtra) & 1
	base := (2 | low) << nExtra
	return 2*int(nb) + low, uint32(x - base), nExtra
}

// A bitWriter accumulates bits LSB first and appends whole bytes to a
// slice.
type bitWriter struct {
	bits  uint64
	nbits uint
}

func (w *bitWriter) write(dst []byte, b uint32, n uint) []byte {
	w.bits |= uint64(b) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		dst = append(dst, byte(w.bits))
		w.bits >>= 8
		w.nbits -= 8
	}
	return dst
}

func (w *bitWriter) writeCode(dst []byte, c hcode) []byte {
	return w.write(dst, uint32(c.code), uint(c.len))
}

// flush writes out a partial final byte.
func (w *bitWriter) flush(dst []byte) []byte {
	if w.nbits > 0 {
		dst = append(dst, byte(w.bits))
	}
	w.bits, w.nbits = 0, 0
	return dst
}

// An Encoder implements the pack.Encoder interface, writing raw DEFLATE
// data made of fixed-Huffman blocks. Blocks are not byte-aligned, so bits
// left over from one call to Encode are carried into the next.
type Encoder struct {
	bw bitWriter
}

// NewEncoder returns an Encoder for raw DEFLATE data.
func NewEncoder() *Encoder {
	return new(Encoder)
}

func (e *Encoder) Reset() {
	e.bw = bitWriter{}
}

func (e *Encoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if len(src) == 0 && !lastBlock {
		return dst
	}

	// BFINAL, then BTYPE 01.
	final := uint32(0)
	if lastBlock {
		final = 1
	}
	dst = e.bw.write(dst, final|1<<1, 3)

	pos := 0
	for _, m := range matches {
		dst = e.literals(dst, src[pos:pos+m.Unmatched])
		pos += m.Unmatched
		if m.Length == 0 {
			continue
		}
		if m.Length < minMatchLength || m.Distance > maxDistance {
			dst = e.literals(dst, src[pos:pos+m.Length])
			pos += m.Length
			continue
		}
		length := m.Length
		for length > 0 {
			n := min(length, maxMatchLength)
			if rest := length - n; rest > 0 && rest < minMatchLength {
				n = length - minMatchLength
			}
			dst = e.match(dst, n, m.Distance)
			length -= n
		}
		pos += m.Length
	}
	dst = e.literals(dst, src[pos:])

	dst = e.bw.writeCode(dst, fixedLiteralCodes[endOfBlock])
	if lastBlock {
		dst = e.bw.flush(dst)
	}
	return dst
}

func (e *Encoder) literals(dst []byte, lits []byte) []byte {
	for _, c := range lits {
		dst = e.bw.writeCode(dst, fixedLiteralCodes[c])
	}
	return dst
}

func (e *Encoder) match(dst []byte, length, distance int) []byte {
	sym, extra, n := lengthCode(length)
	dst = e.bw.writeCode(dst, fixedLiteralCodes[sym])
	if n > 0 {
		dst = e.bw.write(dst, extra, n)
	}

	// Fixed distance codes are plain 5-bit numbers, written MSB first.
	sym, extra, n = distanceCode(distance)
	dst = e.bw.write(dst, uint32(bits.Reverse8(uint8(sym))>>3), 5)
	if n > 0 {
		dst = e.bw.write(dst, extra, n)
	}
	return dst
}
