package snappy

import (
	"hash/crc32"
	"io"

	"github.com/lzkit/pack"
)

const (
	// maxBlockSize is the largest amount of data one chunk may hold.
	maxBlockSize = 65536

	chunkCompressed   = 0x00
	chunkUncompressed = 0x01
	chunkPadding      = 0xfe
	chunkStreamID     = 0xff
)

// An Encoder implements the pack.Encoder interface, writing the Snappy
// framing format. Each block becomes one chunk, so blocks must not exceed
// 64 KiB and matches must not reach into earlier blocks.
type Encoder struct {
	wroteHeader bool
}

var magicChunk = []byte("\xff\x06\x00\x00sNaPpY")

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// crc implements the checksum specified in section 3 of
// https://github.com/google/snappy/blob/master/framing_format.txt
func crc(b []byte) uint32 {
	c := crc32.Update(0, crcTable, b)
	return uint32(c>>15|c<<17) + 0xa282ead8
}

func (e *Encoder) Reset() {
	e.wroteHeader = false
}

func (e *Encoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if len(src) > maxBlockSize {
		panic("snappy: block too large")
	}
	if !e.wroteHeader {
		dst = append(dst, magicChunk...)
		e.wroteHeader = true
	}
	if len(src) == 0 {
		return dst
	}

	start := len(dst)
	checksum := crc(src)
	dst = append(dst,
		chunkCompressed,
		0, 0, 0, // chunk length, filled in below
		byte(checksum), byte(checksum>>8), byte(checksum>>16), byte(checksum>>24),
	)
	dataStart := len(dst)
	dst = AppendBlock(dst, src, matches)

	dataLen := len(dst) - dataStart
	if dataLen >= len(src)-len(src)/8 {
		// Saving less than 12.5%; store the block uncompressed.
		dst = append(dst[:dataStart], src...)
		dst[start] = chunkUncompressed
		dataLen = len(src)
	}

	chunkLen := dataLen + 4
	dst[start+1] = byte(chunkLen)
	dst[start+2] = byte(chunkLen >> 8)
	dst[start+3] = byte(chunkLen >> 16)
	return dst
}

// AppendBlock appends src to dst in the Snappy block format, using matches.
// Every match must be at least 4 bytes long and refer only to data inside
// src.
func AppendBlock(dst, src []byte, matches []pack.Match) []byte {
	dst = appendUvarint(dst, uint64(len(src)))
	pos := 0
	for _, m := range matches {
		if m.Unmatched > 0 {
			dst = appendLiteral(dst, src[pos:pos+m.Unmatched])
			pos += m.Unmatched
		}
		if m.Length > 0 {
			dst = appendCopy(dst, m.Length, m.Distance)
			pos += m.Length
		}
	}
	if pos < len(src) {
		dst = appendLiteral(dst, src[pos:])
	}
	return dst
}

const (
	tagLiteral = 0x00
	tagCopy1   = 0x01
	tagCopy2   = 0x02
	tagCopy4   = 0x03
)

func appendLiteral(dst, lit []byte) []byte {
	n := len(lit) - 1
	switch {
	case n < 60:
		dst = append(dst, byte(n)<<2|tagLiteral)
	case n < 1<<8:
		dst = append(dst, 60<<2|tagLiteral, byte(n))
	case n < 1<<16:
		dst = append(dst, 61<<2|tagLiteral, byte(n), byte(n>>8))
	default:
		dst = append(dst, 62<<2|tagLiteral, byte(n), byte(n>>8), byte(n>>16))
	}
	return append(dst, lit...)
}

// appendCopy emits a copy as a run of 64- or 60-byte tagCopy2 ops and a
// final short op. A tagCopy1 op needs at least 4 bytes, so a leftover of 65
// to 67 bytes is split 60 + 5..7 rather than 64 + 1..3.
func appendCopy(dst []byte, length, offset int) []byte {
	if offset >= 1<<16 {
		for length > 0 {
			n := min(length, 64)
			dst = append(dst, byte(n-1)<<2|tagCopy4,
				byte(offset), byte(offset>>8), byte(offset>>16), byte(offset>>24))
			length -= n
		}
		return dst
	}
	for length >= 68 {
		dst = append(dst, 63<<2|tagCopy2, byte(offset), byte(offset>>8))
		length -= 64
	}
	if length > 64 {
		dst = append(dst, 59<<2|tagCopy2, byte(offset), byte(offset>>8))
		length -= 60
	}
	if length >= 12 || offset >= 2048 || length < 4 {
		return append(dst, byte(length-1)<<2|tagCopy2, byte(offset), byte(offset>>8))
	}
	return append(dst, byte(offset>>8)<<5|byte(length-4)<<2|tagCopy1, byte(offset))
}

// appendUvarint appends x to dst in varint format.
func appendUvarint(dst []byte, x uint64) []byte {
	for x >= 0x80 {
		dst = append(dst, byte(x)|0x80)
		x >>= 7
	}
	return append(dst, byte(x))
}

// NewWriter returns a pack.Writer that writes the Snappy framing format.
// If mf is nil, a BinaryTree is used. The match finder is reset before each
// block, because Snappy chunks are decoded independently.
func NewWriter(w io.Writer, mf pack.MatchFinder) *pack.Writer {
	if mf == nil {
		mf = &pack.BinaryTree{MaxDistance: maxBlockSize - 1}
	}
	return &pack.Writer{
		Dest:        w,
		MatchFinder: pack.AutoReset{MatchFinder: mf},
		Encoder:     &Encoder{},
		BlockSize:   maxBlockSize,
	}
}
