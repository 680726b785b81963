// Package lz implements the match-finding front end of an LZ77 compressor
// and the history window of its decoder.
//
// An InWindow holds a sliding view of the input. BinTree and HashChain index
// every position of that view and, when asked, list the earlier positions
// whose bytes match the current ones: a list of (length, distance) pairs of
// strictly increasing length. Calling Matches or Skip consumes the current
// position. Choosing between literals and matches is left to the caller.
//
// On the decoding side, an OutWindow is a ring buffer of recent output that
// back-references copy from, flushing to an io.Writer as it fills.
//
// Positions are 32-bit and wrap. Before the current position reaches 1<<31-1,
// every stored position is rebased so that the oldest reachable one stays
// positive; a stream of any length can be indexed.
//
// None of the types in this package are safe for concurrent use.
package lz
