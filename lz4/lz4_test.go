package lz4

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/lzkit/pack"
	"github.com/lzkit/pack/internal/corpus"
	"github.com/pierrec/lz4/v4"
	"gotest.tools/v3/assert"
)

func TestBlockEncode(t *testing.T) {
	data := corpus.Text(60000, 1)

	var mf pack.BinaryTree
	matches := mf.FindMatches(nil, data)
	var be BlockEncoder
	compressed := be.Encode(nil, data, matches, true)

	decompressed := make([]byte, len(data))
	n, err := lz4.UncompressBlock(compressed, decompressed)
	assert.NilError(t, err)
	assert.Equal(t, n, len(data))
	assert.Assert(t, bytes.Equal(decompressed, data), "decompressed output does not match")

	var out bytes.Buffer
	assert.NilError(t, DecodeBlock(&out, compressed, nil))
	assert.Assert(t, bytes.Equal(out.Bytes(), data))
}

func TestBlockEncodeShortMatches(t *testing.T) {
	data := corpus.Text(20000, 2)
	mf := pack.HashChain{MinLength: 2}
	matches := mf.FindMatches(nil, data)
	compressed := BlockEncoder{}.Encode(nil, data, matches, true)

	decompressed := make([]byte, len(data))
	n, err := lz4.UncompressBlock(compressed, decompressed)
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(decompressed[:n], data))
}

func TestBlockWithDict(t *testing.T) {
	dict := corpus.Text(30000, 3)
	data := append(bytes.Clone(dict[5000:15000]), corpus.Text(5000, 4)...)

	mf := pack.BinaryTree{Dict: dict}
	matches := mf.FindMatches(nil, data)
	compressed := BlockEncoder{}.Encode(nil, data, matches, true)
	assert.Assert(t, len(compressed) < len(data)/2)

	decompressed := make([]byte, len(data))
	n, err := lz4.UncompressBlockWithDict(compressed, decompressed, dict)
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(decompressed[:n], data))

	var out bytes.Buffer
	assert.NilError(t, DecodeBlock(&out, compressed, dict))
	assert.Assert(t, bytes.Equal(out.Bytes(), data))

	assert.ErrorIs(t, DecodeBlock(io.Discard, compressed, nil), ErrCorrupt)
}

func TestDecodeBlockFromPierrec(t *testing.T) {
	data := corpus.Text(100000, 5)
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	assert.NilError(t, err)
	assert.Assert(t, n > 0)

	var out bytes.Buffer
	assert.NilError(t, DecodeBlock(&out, compressed[:n], nil))
	assert.Assert(t, bytes.Equal(out.Bytes(), data))
}

func TestFrameEncode(t *testing.T) {
	data := corpus.Text(200000, 6)

	var mf pack.BinaryTree
	matches := mf.FindMatches(nil, data)
	var fe FrameEncoder
	compressed := fe.Encode(nil, data, matches, true)

	decompressed, err := io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(decompressed, data), "decompressed output does not match")

	var out bytes.Buffer
	assert.NilError(t, Decode(&out, bytes.NewReader(compressed)))
	assert.Assert(t, bytes.Equal(out.Bytes(), data))
}

func TestFrameHeader(t *testing.T) {
	var fe FrameEncoder
	got := fe.Encode(nil, nil, nil, false)
	assert.DeepEqual(t, got, []byte{0x04, 0x22, 0x4d, 0x18, 0x44, 0x70, 0x1d})
}

func compress(t *testing.T, data []byte, w *pack.Writer) {
	for i := 0; i < len(data); i += 10000 {
		_, err := w.Write(data[i:min(i+10000, len(data))])
		assert.NilError(t, err)
	}
	assert.NilError(t, w.Close())
}

func TestWriterIndependentBlocks(t *testing.T) {
	data := corpus.Text(300000, 7)
	var buf bytes.Buffer
	w := &pack.Writer{
		Dest:        &buf,
		MatchFinder: pack.AutoReset{MatchFinder: &pack.HashChain{}},
		Encoder:     &FrameEncoder{Independent: true, BlockChecksum: true},
		BlockSize:   1 << 16,
	}
	compress(t, data, w)

	decompressed, err := io.ReadAll(lz4.NewReader(bytes.NewReader(buf.Bytes())))
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(decompressed, data))

	var out bytes.Buffer
	assert.NilError(t, Decode(&out, bytes.NewReader(buf.Bytes())))
	assert.Assert(t, bytes.Equal(out.Bytes(), data))
}

func TestWriterDependentBlocks(t *testing.T) {
	// Each block repeats the previous one, so chained matching pays off.
	data := bytes.Repeat(corpus.Text(60000, 8), 4)

	var chained bytes.Buffer
	compress(t, data, NewWriter(&chained, nil))

	var independent bytes.Buffer
	compress(t, data, NewWriter(&independent, pack.AutoReset{MatchFinder: &pack.BinaryTree{}}))

	assert.Assert(t, chained.Len() < independent.Len()/2, "chained %d, independent %d", chained.Len(), independent.Len())

	for _, compressed := range [][]byte{chained.Bytes(), independent.Bytes()} {
		var out bytes.Buffer
		assert.NilError(t, Decode(&out, bytes.NewReader(compressed)))
		assert.Assert(t, bytes.Equal(out.Bytes(), data))
	}
}

func TestWriterIncompressible(t *testing.T) {
	data := corpus.Random(200000, 9)
	var buf bytes.Buffer
	compress(t, data, NewWriter(&buf, nil))

	// Header, then the first block stored uncompressed.
	size := binary.LittleEndian.Uint32(buf.Bytes()[7:])
	assert.Equal(t, size, uint32(1<<16)|uncompressedBit)

	var out bytes.Buffer
	assert.NilError(t, Decode(&out, bytes.NewReader(buf.Bytes())))
	assert.Assert(t, bytes.Equal(out.Bytes(), data))
}

func TestDecodePierrecFrames(t *testing.T) {
	data := corpus.Text(500000, 10)
	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	assert.NilError(t, zw.Apply(
		lz4.BlockSizeOption(lz4.Block64Kb),
		lz4.BlockChecksumOption(true),
		lz4.ChecksumOption(true),
		lz4.SizeOption(uint64(len(data))),
	))
	_, err := zw.Write(data)
	assert.NilError(t, err)
	assert.NilError(t, zw.Close())

	// Two frames in a row, with a skippable frame between them.
	stream := bytes.Clone(compressed.Bytes())
	stream = binary.LittleEndian.AppendUint32(stream, skippableMagic+3)
	stream = binary.LittleEndian.AppendUint32(stream, 5)
	stream = append(stream, "12345"...)
	stream = append(stream, compressed.Bytes()...)

	var out bytes.Buffer
	assert.NilError(t, Decode(&out, bytes.NewReader(stream)))
	assert.Assert(t, bytes.Equal(out.Bytes(), append(bytes.Clone(data), data...)))
}

func TestDecodeErrors(t *testing.T) {
	data := corpus.Text(100000, 11)
	var buf bytes.Buffer
	w := &pack.Writer{
		Dest:        &buf,
		MatchFinder: &pack.BinaryTree{ChainBlocks: true},
		Encoder:     &FrameEncoder{BlockChecksum: true},
	}
	compress(t, data, w)
	good := buf.Bytes()

	corrupt := func(i int) []byte {
		b := bytes.Clone(good)
		b[i] ^= 0x01
		return b
	}

	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{"bad magic", corrupt(0), ErrCorrupt},
		{"bad header checksum", corrupt(6), ErrChecksum},
		{"bad version", append([]byte{0x04, 0x22, 0x4d, 0x18, 0x84, 0x70}, 0), ErrCorrupt},
		{"bad block checksum", corrupt(20), ErrChecksum},
		{"bad content checksum", corrupt(len(good) - 1), ErrChecksum},
		{"truncated", good[:len(good)-6], ErrCorrupt},
		{"truncated magic", good[:2], ErrCorrupt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Decode(io.Discard, bytes.NewReader(tc.input)), tc.err)
		})
	}
}

// byteCounter counts what is written to it.
type byteCounter int

func (c *byteCounter) Write(p []byte) (int, error) {
	*c += byteCounter(len(p))
	return len(p), nil
}

func TestDecodeOversizedBlock(t *testing.T) {
	// One literal, then a match whose length continuation bytes add up to
	// about 255 KiB, in a frame whose blocks are limited to 64 KiB.
	block := []byte{0x1f, 'a', 0x01, 0x00}
	block = append(block, bytes.Repeat([]byte{0xff}, 1000)...)
	block = append(block, 0x00)

	desc := []byte{flagVersion | flagIndependent, 0x40}
	frame := binary.LittleEndian.AppendUint32(nil, frameMagic)
	frame = append(frame, desc...)
	frame = append(frame, headerChecksum(desc))
	frame = binary.LittleEndian.AppendUint32(frame, uint32(len(block)))
	frame = append(frame, block...)
	frame = binary.LittleEndian.AppendUint32(frame, 0)

	var out byteCounter
	err := Decode(&out, bytes.NewReader(frame))
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.ErrorContains(t, err, "more than 65536 bytes")
	assert.Assert(t, out <= 64<<10, "wrote %d bytes", out)
}

func TestDecodeBlockErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"literal overrun", []byte{0x50, 'a', 'b'}},
		{"offset before start", []byte{0x10, 'a', 0x02, 0x00, 0x00}},
		{"zero offset", []byte{0x10, 'a', 0x00, 0x00, 0x00}},
		{"truncated length", []byte{0xf0, 0xff}},
		{"truncated offset", []byte{0x10, 'a', 0x01}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, DecodeBlock(io.Discard, tc.input, nil), ErrCorrupt)
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := corpus.Text(1<<20, 1)
	b.SetBytes(int64(len(data)))
	buf := new(bytes.Buffer)
	w := NewWriter(buf, nil)
	w.Write(data)
	w.Close()
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		w.Reset(io.Discard)
		w.Write(data)
		w.Close()
	}
}
