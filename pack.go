// Package pack is a modular system for data compression.
//
// Many compression libraries have two main parts:
//   - Something that looks for repeated sequences of bytes
//   - An encoder for the compressed data format (often an entropy coder)
//
// This package defines interfaces and an intermediate representation that
// connect the two, so that any match finder can feed any encoder. The match
// finders here are built on the binary tree and hash chain indexes of the lz
// package; the format encoders live in the subpackages.
package pack

// A Match is the basic unit of LZ77 compression.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and returns dst.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to be used with
	// a new stream.
	Reset()
}

// An Encoder encodes the data in its final format. Stream headers are
// written by the first call to Encode after a Reset.
type Encoder interface {
	// Encode appends the encoded format of src to dst, using the match
	// information from matches.
	Encode(dst []byte, src []byte, matches []Match, lastBlock bool) []byte

	// Reset clears any internal state, preparing the Encoder to be used with
	// a new stream.
	Reset()
}
