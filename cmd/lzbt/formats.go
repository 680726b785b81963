package main

import (
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	kflate "github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/lzkit/pack"
	pbrotli "github.com/lzkit/pack/brotli"
	"github.com/lzkit/pack/flate"
	"github.com/lzkit/pack/lz4"
	"github.com/lzkit/pack/snappy"
	"github.com/pkg/errors"
)

// format is a compressed data format, usable as a flag value.
type format string

const (
	formatSnappy  format = "snappy"
	formatLZ4     format = "lz4"
	formatDeflate format = "deflate"
	formatGzip    format = "gzip"
	formatBrotli  format = "brotli"
	formatText    format = "text"
)

var formats = []format{formatSnappy, formatLZ4, formatDeflate, formatGzip, formatBrotli, formatText}

func (f *format) String() string { return string(*f) }

func (f *format) Set(s string) error {
	for _, known := range formats {
		if strings.EqualFold(s, string(known)) {
			*f = known
			return nil
		}
	}
	return errors.Errorf("unknown format %q", s)
}

func (f *format) Type() string { return "format" }

// maxBlockSize is the largest block the format's encoder accepts.
func (f format) maxBlockSize() int {
	switch f {
	case formatSnappy:
		return 1 << 16
	case formatLZ4:
		return 4 << 20
	}
	return 1 << 24
}

// newWriter returns a pack.Writer that writes f to w using mf.
func (f format) newWriter(w io.Writer, mf pack.MatchFinder) *pack.Writer {
	switch f {
	case formatSnappy:
		return snappy.NewWriter(w, mf)
	case formatLZ4:
		return lz4.NewWriter(w, mf)
	}

	pw := &pack.Writer{Dest: w, MatchFinder: mf}
	switch f {
	case formatDeflate:
		pw.Encoder = flate.NewEncoder()
	case formatGzip:
		pw.Encoder = flate.NewGZIPEncoder()
	case formatBrotli:
		pw.Encoder = &pbrotli.Encoder{}
	default:
		pw.Encoder = pack.TextEncoder{}
	}
	return pw
}

// decode reads data in format f from r and writes the decompressed result
// to w.
func (f format) decode(w io.Writer, r io.Reader) error {
	var zr io.Reader
	switch f {
	case formatSnappy:
		return snappy.Decode(w, r)
	case formatLZ4:
		return lz4.Decode(w, r)
	case formatDeflate:
		fr := kflate.NewReader(r)
		defer fr.Close()
		zr = fr
	case formatGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrap(err, "reading gzip header")
		}
		defer gr.Close()
		zr = gr
	case formatBrotli:
		zr = brotli.NewReader(r)
	default:
		return errors.Errorf("no decoder for %s", f)
	}
	_, err := io.Copy(w, zr)
	return err
}
