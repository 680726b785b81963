package snappy

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lzkit/pack/lz"
	"github.com/pkg/errors"
)

// maxDecodedLen bounds the size of a single block passed to DecodeBlock.
const maxDecodedLen = 1 << 26

var magicBody = magicChunk[4:]

// DecodeBlock decodes a Snappy block and writes the result to w.
func DecodeBlock(w io.Writer, src []byte) error {
	var d decoder
	return d.decodeBlock(w, src, 0)
}

type decoder struct {
	win lz.OutWindow
}

// decodeBlock decodes src into w. With a nonzero windowSize the decoded
// length may not exceed it; otherwise the window is sized to the block.
func (d *decoder) decodeBlock(w io.Writer, src []byte, windowSize uint32) error {
	n, read := binary.Uvarint(src)
	if read <= 0 {
		return errors.Wrap(ErrCorrupt, "invalid block length")
	}
	src = src[read:]
	switch {
	case windowSize != 0 && n > uint64(windowSize):
		return errors.Wrapf(ErrCorrupt, "block of %d bytes in a %d byte chunk", n, windowSize)
	case windowSize == 0 && n > maxDecodedLen:
		return errors.Wrapf(ErrTooLarge, "%d bytes", n)
	case windowSize == 0:
		windowSize = uint32(max(n, 1))
	}
	d.win.Create(windowSize)
	if err := d.win.Init(w, false); err != nil {
		return err
	}

	var written uint64
	for len(src) > 0 {
		tag := src[0]
		var length, offset uint64
		switch tag & 0x03 {
		case tagLiteral:
			x := uint64(tag >> 2)
			switch {
			case x < 60:
				src = src[1:]
			case x == 60 && len(src) >= 2:
				x = uint64(src[1])
				src = src[2:]
			case x == 61 && len(src) >= 3:
				x = uint64(binary.LittleEndian.Uint16(src[1:]))
				src = src[3:]
			case x == 62 && len(src) >= 4:
				x = uint64(src[1]) | uint64(src[2])<<8 | uint64(src[3])<<16
				src = src[4:]
			case x == 63 && len(src) >= 5:
				x = uint64(binary.LittleEndian.Uint32(src[1:]))
				src = src[5:]
			default:
				return errors.Wrapf(ErrCorrupt, "truncated literal tag at byte %d", written)
			}
			length = x + 1
			if length > uint64(len(src)) || length > n-written {
				return errors.Wrapf(ErrCorrupt, "literal of %d bytes at byte %d", length, written)
			}
			for _, b := range src[:length] {
				if err := d.win.PutByte(b); err != nil {
					return err
				}
			}
			written += length
			src = src[length:]
			continue

		case tagCopy1:
			if len(src) < 2 {
				return errors.Wrapf(ErrCorrupt, "truncated copy at byte %d", written)
			}
			length = 4 + uint64(tag>>2&0x07)
			offset = uint64(tag&0xe0)<<3 | uint64(src[1])
			src = src[2:]

		case tagCopy2:
			if len(src) < 3 {
				return errors.Wrapf(ErrCorrupt, "truncated copy at byte %d", written)
			}
			length = 1 + uint64(tag>>2)
			offset = uint64(binary.LittleEndian.Uint16(src[1:]))
			src = src[3:]

		case tagCopy4:
			if len(src) < 5 {
				return errors.Wrapf(ErrCorrupt, "truncated copy at byte %d", written)
			}
			length = 1 + uint64(tag>>2)
			offset = uint64(binary.LittleEndian.Uint32(src[1:]))
			src = src[5:]
		}

		if offset == 0 || offset > written || length > n-written {
			return errors.Wrapf(ErrCorrupt, "copy of %d bytes from offset %d at byte %d", length, offset, written)
		}
		if err := d.win.CopyBlock(uint32(offset-1), uint32(length)); err != nil {
			return err
		}
		written += length
	}
	if written != n {
		return errors.Wrapf(ErrCorrupt, "decoded %d bytes, header says %d", written, n)
	}
	return d.win.ReleaseStream()
}

// Decode reads a stream in the Snappy framing format from r and writes the
// decoded data to w.
func Decode(w io.Writer, r io.Reader) error {
	var (
		d       decoder
		header  [4]byte
		chunk   []byte
		decoded bytes.Buffer
		sawID   bool
	)
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			switch err {
			case io.EOF:
				return nil
			case io.ErrUnexpectedEOF:
				return errors.Wrap(ErrCorrupt, "truncated chunk header")
			}
			return err
		}
		chunkType := header[0]
		chunkLen := int(header[1]) | int(header[2])<<8 | int(header[3])<<16
		if cap(chunk) < chunkLen {
			chunk = make([]byte, chunkLen)
		}
		chunk = chunk[:chunkLen]
		if _, err := io.ReadFull(r, chunk); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errors.Wrapf(ErrCorrupt, "truncated chunk of type %#x", chunkType)
			}
			return err
		}

		if !sawID && chunkType != chunkStreamID {
			return errors.Wrap(ErrCorrupt, "missing stream identifier")
		}

		switch {
		case chunkType == chunkStreamID:
			if !bytes.Equal(chunk, magicBody) {
				return errors.Wrap(ErrCorrupt, "bad stream identifier")
			}
			sawID = true

		case chunkType == chunkCompressed || chunkType == chunkUncompressed:
			if chunkLen < 4 {
				return errors.Wrap(ErrCorrupt, "short data chunk")
			}
			sum := binary.LittleEndian.Uint32(chunk)
			data := chunk[4:]
			if chunkType == chunkCompressed {
				decoded.Reset()
				if err := d.decodeBlock(&decoded, data, maxBlockSize); err != nil {
					return err
				}
				data = decoded.Bytes()
			} else if len(data) > maxBlockSize {
				return errors.Wrapf(ErrCorrupt, "uncompressed chunk of %d bytes", len(data))
			}
			if crc(data) != sum {
				return ErrChecksum
			}
			if _, err := w.Write(data); err != nil {
				return err
			}

		case chunkType < 0x80:
			return errors.Wrapf(ErrUnsupported, "reserved chunk type %#x", chunkType)

		default:
			// Padding and reserved skippable chunks.
		}
	}
}
