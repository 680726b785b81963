package lz

import (
	"encoding/binary"
	"io"
	"math/bits"
)

// InWindow is a sliding view over an input stream. It keeps at least
// keepSizeBefore bytes of history behind the current position and tries to
// keep keepSizeAfter bytes of lookahead in front of it, compacting its buffer
// when the position approaches the end.
//
// Positions are uint32 and wrap; physical buffer indexes are always computed
// as bufferOffset+pos.
type InWindow struct {
	buf []byte
	r   io.Reader

	bufferOffset uint32
	blockSize    uint32
	pos          uint32
	posLimit     uint32
	streamPos    uint32

	keepSizeBefore            uint32
	keepSizeAfter             uint32
	pointerToLastSafePosition uint32

	streamEndReached bool
}

// Create sizes the buffer. The allocation is kept if the total size did not
// change since the previous call.
func (w *InWindow) Create(keepSizeBefore, keepSizeAfter, keepSizeReserve uint32) {
	w.keepSizeBefore = keepSizeBefore
	w.keepSizeAfter = keepSizeAfter
	blockSize := keepSizeBefore + keepSizeAfter + keepSizeReserve
	if w.buf == nil || w.blockSize != blockSize {
		w.buf = make([]byte, blockSize)
		w.blockSize = blockSize
	}
	w.pointerToLastSafePosition = w.blockSize - keepSizeAfter
}

func (w *InWindow) SetStream(r io.Reader) { w.r = r }

func (w *InWindow) ReleaseStream() { w.r = nil }

// Init starts a new stream and fills the buffer.
func (w *InWindow) Init() error {
	w.bufferOffset = 0
	w.pos = 0
	w.posLimit = 0
	w.streamPos = 0
	w.streamEndReached = false
	return w.ReadBlock()
}

// MovePos advances the position by one byte, compacting and refilling the
// buffer when the lookahead runs short.
func (w *InWindow) MovePos() error {
	w.pos++
	if w.pos > w.posLimit {
		if w.bufferOffset+w.pos > w.pointerToLastSafePosition {
			w.MoveBlock()
		}
		return w.ReadBlock()
	}
	return nil
}

// MoveBlock moves the retained history and the unread lookahead to the front
// of the buffer.
func (w *InWindow) MoveBlock() {
	offset := w.bufferOffset + w.pos - w.keepSizeBefore
	if offset > 0 {
		offset--
	}
	numBytes := w.bufferOffset + w.streamPos - offset
	copy(w.buf[:numBytes], w.buf[offset:offset+numBytes])
	w.bufferOffset -= offset
}

// ReadBlock reads from the stream until the buffer is full or the stream
// ends. A read of zero bytes, or io.EOF, ends the stream; later calls do
// nothing. Other read errors are returned as they are.
func (w *InWindow) ReadBlock() error {
	if w.streamEndReached {
		return nil
	}
	for {
		size := w.blockSize - w.bufferOffset - w.streamPos
		if size == 0 {
			return nil
		}
		start := w.bufferOffset + w.streamPos
		n, err := w.r.Read(w.buf[start : start+size])
		if n > 0 {
			w.streamPos += uint32(n)
			if w.streamPos >= w.pos+w.keepSizeAfter {
				w.posLimit = w.streamPos - w.keepSizeAfter
			}
		}
		if err != nil && err != io.EOF {
			return err
		}
		if n == 0 || err == io.EOF {
			w.posLimit = w.streamPos
			if w.bufferOffset+w.posLimit > w.pointerToLastSafePosition {
				w.posLimit = w.pointerToLastSafePosition - w.bufferOffset
			}
			w.streamEndReached = true
			return nil
		}
	}
}

// Resume continues a stream whose reader reported its end but has since
// been given more data. Positions already read are kept.
func (w *InWindow) Resume() error {
	if !w.streamEndReached {
		return nil
	}
	w.streamEndReached = false
	w.posLimit = w.pos
	if w.bufferOffset+w.pos > w.pointerToLastSafePosition {
		w.MoveBlock()
	}
	return w.ReadBlock()
}

// IndexByte returns the byte index positions away from the current one.
func (w *InWindow) IndexByte(index int32) byte {
	return w.buf[w.bufferOffset+w.pos+uint32(index)]
}

// MatchLen returns how many bytes, up to limit, the data at
// pos+index matches the data distance+1 bytes before it. Once the stream
// has ended the limit is clipped to the available data.
func (w *InWindow) MatchLen(index int32, distance, limit uint32) uint32 {
	if w.streamEndReached && w.pos+uint32(index)+limit > w.streamPos {
		limit = w.streamPos - (w.pos + uint32(index))
	}
	distance++
	p := w.bufferOffset + w.pos + uint32(index)
	return matchLen(w.buf[p-distance:], w.buf[p:], limit)
}

// AvailableBytes returns the number of bytes from the current position to
// the end of the data read so far.
func (w *InWindow) AvailableBytes() uint32 { return w.streamPos - w.pos }

// ReduceOffsets shifts the logical positions down by sub without moving any
// data.
func (w *InWindow) ReduceOffsets(sub int32) {
	s := uint32(sub)
	w.bufferOffset += s
	w.posLimit -= s
	w.pos -= s
	w.streamPos -= s
}

// matchLen returns the length of the common prefix of a and b, up to limit.
func matchLen(a, b []byte, limit uint32) uint32 {
	if uint32(len(a)) > limit {
		a = a[:limit]
	}
	if uint32(len(b)) > limit {
		b = b[:limit]
	}
	n := uint32(0)
	for len(a) >= 8 && len(b) >= 8 {
		x := binary.LittleEndian.Uint64(a) ^ binary.LittleEndian.Uint64(b)
		if x != 0 {
			return n + uint32(bits.TrailingZeros64(x)>>3)
		}
		n += 8
		a, b = a[8:], b[8:]
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		n++
	}
	return n
}
