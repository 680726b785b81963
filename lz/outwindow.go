package lz

import "io"

// OutWindow is the decoder's history: a ring buffer of the most recent
// output that back-references copy from. Bytes are written to the sink
// whenever the ring fills, and on Flush.
type OutWindow struct {
	buf        []byte
	windowSize uint32
	pos        uint32
	streamPos  uint32
	w          io.Writer

	// TrainSize is the number of bytes preloaded by the last Train.
	TrainSize uint32
}

// Create sizes the ring for windowSize bytes, reusing the allocation when
// the size is unchanged. The cursors are reset.
func (o *OutWindow) Create(windowSize uint32) {
	if o.buf == nil || o.windowSize != windowSize {
		o.buf = make([]byte, windowSize)
	}
	o.windowSize = windowSize
	o.pos = 0
	o.streamPos = 0
}

// Init attaches w as the sink, flushing and detaching any previous one. In
// solid mode the history of the previous stream stays available.
func (o *OutWindow) Init(w io.Writer, solid bool) error {
	if err := o.ReleaseStream(); err != nil {
		return err
	}
	o.w = w
	if !solid {
		o.streamPos = 0
		o.pos = 0
		o.TrainSize = 0
	}
	return nil
}

// Train preloads the window with the last windowSize bytes of r, without
// writing them to the sink. It reports false if r ended early.
func (o *OutWindow) Train(r io.ReadSeeker) (bool, error) {
	length, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return false, err
	}
	size := uint32(min(length, int64(o.windowSize)))
	o.TrainSize = size
	if _, err := r.Seek(length-int64(size), io.SeekStart); err != nil {
		return false, err
	}
	o.streamPos = 0
	o.pos = 0
	for size > 0 {
		chunk := min(o.windowSize-o.pos, size)
		n, err := r.Read(o.buf[o.pos : o.pos+chunk])
		if err != nil && err != io.EOF {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		size -= uint32(n)
		o.pos += uint32(n)
		o.streamPos += uint32(n)
		if o.pos == o.windowSize {
			o.pos = 0
			o.streamPos = 0
		}
	}
	return true, nil
}

// ReleaseStream flushes pending bytes and detaches the sink.
func (o *OutWindow) ReleaseStream() error {
	err := o.Flush()
	o.w = nil
	return err
}

// Flush writes the bytes produced since the last flush.
func (o *OutWindow) Flush() error {
	size := o.pos - o.streamPos
	if size == 0 {
		return nil
	}
	if o.w == nil {
		return ErrNoSink
	}
	n, err := o.w.Write(o.buf[o.streamPos:o.pos])
	if err != nil {
		return err
	}
	if n != int(size) {
		return io.ErrShortWrite
	}
	if o.pos >= o.windowSize {
		o.pos = 0
	}
	o.streamPos = o.pos
	return nil
}

// CopyBlock appends length bytes copied from distance+1 bytes back. The
// source may overlap the bytes being written.
func (o *OutWindow) CopyBlock(distance, length uint32) error {
	p := o.pos - distance - 1
	if p >= o.windowSize {
		p += o.windowSize
	}
	for ; length > 0; length-- {
		if p >= o.windowSize {
			p = 0
		}
		o.buf[o.pos] = o.buf[p]
		o.pos++
		p++
		if o.pos >= o.windowSize {
			if err := o.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *OutWindow) PutByte(b byte) error {
	o.buf[o.pos] = b
	o.pos++
	if o.pos >= o.windowSize {
		return o.Flush()
	}
	return nil
}

// GetByte returns the byte distance+1 bytes back.
func (o *OutWindow) GetByte(distance uint32) byte {
	p := o.pos - distance - 1
	if p >= o.windowSize {
		p += o.windowSize
	}
	return o.buf[p]
}
