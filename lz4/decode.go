package lz4

import (
	"bytes"
	"encoding/binary"
	"hash"
	"io"

	"github.com/lzkit/pack/lz"
	"github.com/pierrec/xxHash/xxHash32"
	"github.com/pkg/errors"
)

// windowSize covers the longest LZ4 back-reference.
const windowSize = 1 << 16

type decoder struct {
	win lz.OutWindow

	// history is how many bytes before the current block back-references
	// may reach.
	history int
}

// DecodeBlock decodes one LZ4 block and writes the result to w. dict, which
// may be empty, is the data that preceded the block when it was compressed.
func DecodeBlock(w io.Writer, src, dict []byte) error {
	var d decoder
	d.win.Create(windowSize)
	if err := d.win.Init(w, false); err != nil {
		return err
	}
	if len(dict) > 0 {
		if _, err := d.win.Train(bytes.NewReader(dict)); err != nil {
			return err
		}
		d.history = int(d.win.TrainSize)
	}
	if _, err := d.decodeBlock(src, 0); err != nil {
		return err
	}
	return d.win.ReleaseStream()
}

// decodeBlock decodes the sequences in src into the window and returns the
// number of bytes produced. A positive limit caps the output; a block that
// would exceed it is rejected before the excess is written.
func (d *decoder) decodeBlock(src []byte, limit int) (int, error) {
	written := 0
	for {
		if len(src) == 0 {
			return written, errors.Wrapf(ErrCorrupt, "block ends without a final sequence at byte %d", written)
		}
		token := src[0]
		src = src[1:]

		litLen := int(token >> 4)
		if litLen == 15 {
			n, rest, err := readLength(src)
			if err != nil {
				return written, err
			}
			litLen += n
			src = rest
		}
		if litLen > len(src) {
			return written, errors.Wrapf(ErrCorrupt, "literal run of %d bytes at byte %d", litLen, written)
		}
		if limit > 0 && written+litLen > limit {
			return written, errors.Wrapf(ErrCorrupt, "block decodes to more than %d bytes", limit)
		}
		for _, b := range src[:litLen] {
			if err := d.win.PutByte(b); err != nil {
				return written, err
			}
		}
		written += litLen
		src = src[litLen:]

		if len(src) == 0 {
			return written, nil
		}
		if len(src) < 2 {
			return written, errors.Wrapf(ErrCorrupt, "truncated offset at byte %d", written)
		}
		offset := int(binary.LittleEndian.Uint16(src))
		src = src[2:]
		if offset == 0 || offset > d.history+written {
			return written, errors.Wrapf(ErrCorrupt, "offset %d at byte %d", offset, written)
		}

		matchLen := int(token&0x0f) + minMatch
		if token&0x0f == 15 {
			n, rest, err := readLength(src)
			if err != nil {
				return written, err
			}
			matchLen += n
			src = rest
		}
		if limit > 0 && written+matchLen > limit {
			return written, errors.Wrapf(ErrCorrupt, "block decodes to more than %d bytes", limit)
		}
		if err := d.win.CopyBlock(uint32(offset-1), uint32(matchLen)); err != nil {
			return written, err
		}
		written += matchLen
	}
}

// readLength reads the continuation bytes of a length field.
func readLength(src []byte) (int, []byte, error) {
	n := 0
	for i, b := range src {
		n += int(b)
		if b != 255 {
			return n, src[i+1:], nil
		}
	}
	return 0, nil, errors.Wrap(ErrCorrupt, "truncated length")
}

// Decode reads LZ4 frames from r until it ends and writes the decoded data
// to w. Skippable frames are ignored.
func Decode(w io.Writer, r io.Reader) error {
	var d decoder
	d.win.Create(windowSize)
	var buf [4]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			switch err {
			case io.EOF:
				return nil
			case io.ErrUnexpectedEOF:
				return errors.Wrap(ErrCorrupt, "truncated magic number")
			}
			return err
		}
		magic := binary.LittleEndian.Uint32(buf[:])
		switch {
		case magic == frameMagic:
			if err := d.decodeFrame(w, r); err != nil {
				return err
			}
		case magic&0xFFFFFFF0 == skippableMagic:
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return readErr(err, "skippable frame size")
			}
			size := int64(binary.LittleEndian.Uint32(buf[:]))
			if _, err := io.CopyN(io.Discard, r, size); err != nil {
				return readErr(err, "skippable frame")
			}
		default:
			return errors.Wrapf(ErrCorrupt, "bad magic number %#x", magic)
		}
	}
}

// readErr converts an unexpected end of input to ErrCorrupt.
func readErr(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrCorrupt, "truncated %s", what)
	}
	return err
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

func (d *decoder) decodeFrame(w io.Writer, r io.Reader) error {
	// The descriptor is at most FLG, BD, an 8-byte content size and a
	// 4-byte dictionary ID.
	desc := make([]byte, 2, 14)
	if _, err := io.ReadFull(r, desc); err != nil {
		return readErr(err, "frame descriptor")
	}
	flg, bd := desc[0], desc[1]
	if flg>>6 != 1 {
		return errors.Wrapf(ErrCorrupt, "frame version %d", flg>>6)
	}
	if flg&0x02 != 0 || bd&0x8F != 0 {
		return errors.Wrap(ErrCorrupt, "reserved bits set in frame descriptor")
	}
	blockMax := 0
	switch bd >> 4 {
	case 4:
		blockMax = 64 << 10
	case 5:
		blockMax = 256 << 10
	case 6:
		blockMax = 1 << 20
	case 7:
		blockMax = 4 << 20
	default:
		return errors.Wrapf(ErrCorrupt, "block size id %d", bd>>4)
	}

	extra := 0
	if flg&flagContentSize != 0 {
		extra += 8
	}
	if flg&flagDictID != 0 {
		extra += 4
	}
	desc = desc[:2+extra]
	if _, err := io.ReadFull(r, desc[2:]); err != nil {
		return readErr(err, "frame descriptor")
	}
	var hc [1]byte
	if _, err := io.ReadFull(r, hc[:]); err != nil {
		return readErr(err, "header checksum")
	}
	if headerChecksum(desc) != hc[0] {
		return errors.Wrap(ErrChecksum, "frame descriptor")
	}

	out := &countingWriter{w: w}
	var sink io.Writer = out
	var hasher hash.Hash32
	if flg&flagContentSum != 0 {
		hasher = xxHash32.New(0)
		sink = io.MultiWriter(out, hasher)
	}
	independent := flg&flagIndependent != 0

	if err := d.win.Init(sink, false); err != nil {
		return err
	}
	d.history = 0

	var block []byte
	var buf [4]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return readErr(err, "block size")
		}
		size := binary.LittleEndian.Uint32(buf[:])
		if size == 0 {
			break
		}
		uncompressed := size&uncompressedBit != 0
		size &^= uncompressedBit
		if int(size) > blockMax {
			return errors.Wrapf(ErrCorrupt, "block of %d bytes exceeds the %d byte maximum", size, blockMax)
		}
		if cap(block) < int(size) {
			block = make([]byte, size)
		}
		block = block[:size]
		if _, err := io.ReadFull(r, block); err != nil {
			return readErr(err, "block")
		}
		if flg&flagBlockChecksum != 0 {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return readErr(err, "block checksum")
			}
			if xxHash32.Checksum(block, 0) != binary.LittleEndian.Uint32(buf[:]) {
				return errors.Wrap(ErrChecksum, "block")
			}
		}

		// Dependent blocks continue the previous block's history.
		if err := d.win.Init(sink, !independent); err != nil {
			return err
		}
		if independent {
			d.history = 0
		}

		n := len(block)
		if uncompressed {
			for _, b := range block {
				if err := d.win.PutByte(b); err != nil {
					return err
				}
			}
		} else {
			var err error
			if n, err = d.decodeBlock(block, blockMax); err != nil {
				return err
			}
		}
		d.history += n
	}
	if err := d.win.Flush(); err != nil {
		return err
	}

	if flg&flagContentSum != 0 {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return readErr(err, "content checksum")
		}
		if hasher.Sum32() != binary.LittleEndian.Uint32(buf[:]) {
			return errors.Wrap(ErrChecksum, "content")
		}
	}
	if flg&flagContentSize != 0 {
		if size := binary.LittleEndian.Uint64(desc[2:]); size != out.n {
			return errors.Wrapf(ErrCorrupt, "frame holds %d bytes, header says %d", out.n, size)
		}
	}
	return nil
}
