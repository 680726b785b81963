package lz

import "io"

// A Pair is one match candidate. Dist is the distance to the match minus
// one, so a Dist of 0 refers to the previous byte.
type Pair struct {
	Len  uint32
	Dist uint32
}

// A MatchFinder indexes an input stream and reports, position by position,
// the earlier occurrences of the bytes at the current position.
type MatchFinder interface {
	Create(historySize, keepAddBufferBefore, matchMaxLen, keepAddBufferAfter uint32) error
	SetStream(r io.Reader)
	Init() error
	ReleaseStream()

	// Matches appends the candidates for the current position to dst, in
	// order of strictly increasing length, and advances by one position.
	Matches(dst []Pair) ([]Pair, error)

	// Skip indexes num positions without reporting candidates.
	Skip(num uint32) error

	IndexByte(index int32) byte
	MatchLen(index int32, distance, limit uint32) uint32
	AvailableBytes() uint32
}

var (
	_ MatchFinder = (*BinTree)(nil)
	_ MatchFinder = (*HashChain)(nil)
)
