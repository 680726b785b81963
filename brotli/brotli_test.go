package brotli

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/andybalholm/brotli/matchfinder"
	"github.com/lzkit/pack"
	"github.com/lzkit/pack/internal/corpus"
	"gotest.tools/v3/assert"
)

func roundTrip(t *testing.T, data []byte, w *pack.Writer, buf *bytes.Buffer) {
	t.Helper()
	for i := 0; i < len(data); i += 30000 {
		_, err := w.Write(data[i:min(i+30000, len(data))])
		assert.NilError(t, err)
	}
	assert.NilError(t, w.Close())

	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(buf.Bytes())))
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(decompressed, data), "decompressed output doesn't match")
}

func TestEncode(t *testing.T) {
	data := corpus.Text(300000, 1)
	b := new(bytes.Buffer)
	w := &pack.Writer{
		Dest: b,
		MatchFinder: &pack.BinaryTree{
			MaxDistance: 32768,
			MaxLength:   258,
			ChainBlocks: true,
		},
		Encoder:   &Encoder{},
		BlockSize: 1 << 16,
	}
	roundTrip(t, data, w, b)
	assert.Assert(t, b.Len() < len(data)/2)
}

func TestEncodeHelloHello(t *testing.T) {
	hello := []byte("HelloHelloHelloHelloHelloHelloHelloHelloHelloHello, world")
	b := new(bytes.Buffer)
	w := &pack.Writer{
		Dest: b,
		MatchFinder: &pack.HashChain{
			MaxDistance: 32768,
			MaxLength:   258,
			ChainBlocks: true,
		},
		Encoder:   &Encoder{},
		BlockSize: 1 << 16,
	}
	roundTrip(t, hello, w, b)
}

func TestEncodeEmpty(t *testing.T) {
	b := new(bytes.Buffer)
	roundTrip(t, nil, NewWriter(b, 6), b)
	assert.DeepEqual(t, b.Bytes(), []byte{0x3f})
}

func TestEncodeBlockMultiple(t *testing.T) {
	// The input fills the last block exactly, so Close has nothing left
	// to encode.
	data := corpus.Text(1<<17, 2)
	b := new(bytes.Buffer)
	roundTrip(t, data, NewWriter(b, 6), b)
}

func TestLevels(t *testing.T) {
	data := corpus.Text(200000, 3)
	for level := -1; level <= 10; level++ {
		t.Run(fmt.Sprint(level), func(t *testing.T) {
			b := new(bytes.Buffer)
			roundTrip(t, data, NewWriter(b, level), b)
		})
	}
}

func TestReset(t *testing.T) {
	data := corpus.Text(100000, 4)
	first := new(bytes.Buffer)
	w := NewWriter(first, 7)
	roundTrip(t, data, w, first)

	second := new(bytes.Buffer)
	w.Reset(second)
	roundTrip(t, data, w, second)
	assert.DeepEqual(t, first.Bytes(), second.Bytes())
}

func TestConvertMatchesFarDistance(t *testing.T) {
	got := convertMatches(nil, []pack.Match{
		{Unmatched: 5, Length: 10, Distance: maxDistance},
		{Unmatched: 2, Length: 8, Distance: maxDistance + 1},
		{Unmatched: 3, Length: 6, Distance: 100},
		{Unmatched: 1, Length: 4, Distance: 1 << 30},
		{Unmatched: 7},
	})
	assert.DeepEqual(t, got, []matchfinder.Match{
		{Unmatched: 5, Length: 10, Distance: maxDistance},
		{Unmatched: 13, Length: 6, Distance: 100},
		{Unmatched: 12},
	})
}

func TestEncodeFarMatches(t *testing.T) {
	if testing.Short() {
		t.Skip("encodes 16 MiB")
	}
	history := corpus.Random(1<<24+100, 6)
	var e Encoder
	var out []byte
	for i := 0; i < len(history); i += 1 << 20 {
		chunk := history[i:min(i+1<<20, len(history))]
		out = e.Encode(out, chunk, []pack.Match{{Unmatched: len(chunk)}}, false)
	}

	// The first match reaches exactly as far as the window allows, the
	// second back to the start of the stream.
	pos := len(history)
	var src []byte
	src = append(src, history[pos-maxDistance:pos-maxDistance+64]...)
	src = append(src, history[:64]...)
	matches := []pack.Match{
		{Length: 64, Distance: maxDistance},
		{Length: 64, Distance: pos + 64},
	}
	out = e.Encode(out, src, matches, true)

	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(out)))
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(decompressed, append(history, src...)))
}

func benchmark(b *testing.B, level int) {
	b.StopTimer()
	b.ReportAllocs()
	data := corpus.Text(1<<20, 1)

	b.SetBytes(int64(len(data)))
	buf := new(bytes.Buffer)
	w := NewWriter(buf, level)
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

func BenchmarkEncodeLevel1(b *testing.B) { benchmark(b, 1) }
func BenchmarkEncodeLevel4(b *testing.B) { benchmark(b, 4) }
func BenchmarkEncodeLevel6(b *testing.B) { benchmark(b, 6) }
func BenchmarkEncodeLevel9(b *testing.B) { benchmark(b, 9) }
