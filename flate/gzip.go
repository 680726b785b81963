package flate

import (
	"encoding/binary"
	"hash/crc32"
	"time"

	"github.com/lzkit/pack"
)

// NewGZIPEncoder returns a pack.Encoder that wraps DEFLATE data in the gzip
// format. The header is written by the first call to Encode.
func NewGZIPEncoder() pack.Encoder {
	return &gzipEncoder{
		f: NewEncoder(),
	}
}

type gzipEncoder struct {
	f           pack.Encoder
	wroteHeader bool
	length      uint32
	crc         uint32
}

func (g *gzipEncoder) Reset() {
	g.f.Reset()
	g.wroteHeader = false
	g.length = 0
	g.crc = 0
}

func (g *gzipEncoder) header(dst []byte) []byte {
	dst = append(dst,
		0x1f, 0x8b, // magic number
		8, // CM = flate
		0, // FLG
	)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(time.Now().Unix()))
	return append(dst,
		0,   // XFL
		255, // OS (unspecified)
	)
}

func (g *gzipEncoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if !g.wroteHeader {
		dst = g.header(dst)
		g.wroteHeader = true
	}
	dst = g.f.Encode(dst, src, matches, lastBlock)

	g.length += uint32(len(src))
	g.crc = crc32.Update(g.crc, crc32.IEEETable, src)

	if lastBlock {
		dst = binary.LittleEndian.AppendUint32(dst, g.crc)
		dst = binary.LittleEndian.AppendUint32(dst, g.length)
	}
	return dst
}
