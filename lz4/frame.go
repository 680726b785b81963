package lz4

import (
	"encoding/binary"
	"hash"
	"io"

	"github.com/lzkit/pack"
	"github.com/pierrec/xxHash/xxHash32"
)

const (
	frameMagic     = 0x184D2204
	skippableMagic = 0x184D2A50

	flagVersion       = 0x40
	flagIndependent   = 0x20
	flagBlockChecksum = 0x10
	flagContentSize   = 0x08
	flagContentSum    = 0x04
	flagDictID        = 0x01

	// bdMax4MB is the block descriptor for blocks of up to 4 MiB.
	bdMax4MB = 0x70

	uncompressedBit = 0x80000000
)

// A FrameEncoder implements the pack.Encoder interface, writing in the LZ4
// frame format with a content checksum. Each call to Encode writes one
// block.
type FrameEncoder struct {
	// Independent marks blocks as decodable on their own. Leave it unset
	// when the match finder chains blocks.
	Independent bool

	// BlockChecksum adds a checksum after each block.
	BlockChecksum bool

	hasher      hash.Hash32
	blockBuffer []byte
}

func (f *FrameEncoder) Reset() {
	f.hasher = nil
}

func (f *FrameEncoder) header(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, frameMagic)
	flg := byte(flagVersion | flagContentSum)
	if f.Independent {
		flg |= flagIndependent
	}
	if f.BlockChecksum {
		flg |= flagBlockChecksum
	}
	desc := []byte{flg, bdMax4MB}
	dst = append(dst, desc...)
	return append(dst, headerChecksum(desc))
}

// headerChecksum is the HC byte that ends a frame descriptor.
func headerChecksum(desc []byte) byte {
	return byte(xxHash32.Checksum(desc, 0) >> 8)
}

func (f *FrameEncoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if f.hasher == nil {
		f.hasher = xxHash32.New(0)
		dst = f.header(dst)
	}

	if len(src) > 0 {
		var be BlockEncoder
		f.blockBuffer = be.Encode(f.blockBuffer[:0], src, matches, lastBlock)
		block, size := f.blockBuffer, uint32(len(f.blockBuffer))
		if len(block) >= len(src) {
			block, size = src, uint32(len(src))|uncompressedBit
		}
		dst = binary.LittleEndian.AppendUint32(dst, size)
		dst = append(dst, block...)
		if f.BlockChecksum {
			dst = binary.LittleEndian.AppendUint32(dst, xxHash32.Checksum(block, 0))
		}
		f.hasher.Write(src)
	}

	if lastBlock {
		dst = append(dst, 0, 0, 0, 0)
		dst = binary.LittleEndian.AppendUint32(dst, f.hasher.Sum32())
	}
	return dst
}

// NewWriter returns a pack.Writer that writes LZ4 frames. If mf is nil, a
// BinaryTree that chains blocks is used, and the frame is marked as having
// dependent blocks.
func NewWriter(w io.Writer, mf pack.MatchFinder) *pack.Writer {
	if mf == nil {
		mf = &pack.BinaryTree{
			MaxDistance: maxDistance,
			ChainBlocks: true,
		}
	}
	return &pack.Writer{
		Dest:        w,
		MatchFinder: mf,
		Encoder:     &FrameEncoder{},
		BlockSize:   1 << 16,
	}
}
