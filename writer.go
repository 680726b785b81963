package pack

import "io"

// A Writer uses MatchFinder and Encoder to write compressed data to Dest.
type Writer struct {
	Dest        io.Writer
	MatchFinder MatchFinder
	Encoder     Encoder

	// BlockSize is the number of bytes to compress at a time.
	// The default is 65536.
	BlockSize int

	err     error
	inBuf   []byte
	outBuf  []byte
	matches []Match
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.BlockSize == 0 {
		w.BlockSize = 1 << 16
	}

	for len(p) > 0 {
		free := w.BlockSize - len(w.inBuf)
		if len(p) <= free {
			w.inBuf = append(w.inBuf, p...)
			return n + len(p), nil
		}
		w.inBuf = append(w.inBuf, p[:free]...)
		p = p[free:]
		n += free
		w.writeBlock(w.inBuf, false)
		if w.err != nil {
			return n, w.err
		}
	}
	return n, nil
}

func (w *Writer) writeBlock(p []byte, lastBlock bool) {
	w.outBuf = w.outBuf[:0]
	w.matches = w.MatchFinder.FindMatches(w.matches[:0], p)
	w.outBuf = w.Encoder.Encode(w.outBuf, p, w.matches, lastBlock)
	_, w.err = w.Dest.Write(w.outBuf)
	w.inBuf = w.inBuf[:0]
}

// Close compresses any buffered data as the final block. It does not close
// Dest.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	w.writeBlock(w.inBuf, true)
	if w.err != nil {
		return w.err
	}
	w.err = errWriterClosed
	return nil
}

// Reset discards the Writer's state and makes it equivalent to the result
// of its original state, but writing to newDest.
func (w *Writer) Reset(newDest io.Writer) {
	w.MatchFinder.Reset()
	w.Encoder.Reset()
	w.err = nil
	w.inBuf = w.inBuf[:0]
	w.outBuf = w.outBuf[:0]
	w.matches = w.matches[:0]
	w.Dest = newDest
}

// AutoReset wraps a MatchFinder that can return references to data in
// previous blocks, and calls Reset before each block. It is useful for
// encoders whose blocks must be decodable on their own, such as Snappy's.
type AutoReset struct {
	MatchFinder
}

func (a AutoReset) FindMatches(dst []Match, src []byte) []Match {
	a.Reset()
	return a.MatchFinder.FindMatches(dst, src)
}
