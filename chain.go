package pack

import "github.com/lzkit/pack/lz"

// HashChain is an implementation of the MatchFinder interface that uses an
// lz.HashChain: each hash bucket links to the previous position with the
// same hash, and up to CutValue links are followed per position. It updates
// faster than BinaryTree, at some cost in compression.
type HashChain struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 65535.
	MaxDistance int

	// MaxLength is the longest match that will be returned.
	// The default is 273.
	MaxLength int

	// FastBytes is the match length at which the search stops; see
	// BinaryTree.
	FastBytes int

	// MinLength is the shortest match that will be used. The default is 4.
	MinLength int

	// NumHashBytes selects 2-byte (HC2) or 4-byte (HC4) hashing.
	// The default is 4.
	NumHashBytes int

	// CutValue is how many entries to examine on the hash chain.
	CutValue int

	// ChainBlocks allows matches to refer to data in previous blocks.
	ChainBlocks bool

	// Lazy selects a LazyParser instead of a GreedyParser.
	Lazy bool

	// Dict is data that matches may refer to as if it came before the
	// stream; see BinaryTree.
	Dict []byte

	s *lzSearcher
}

func (q *HashChain) searcher() *lzSearcher {
	if q.s == nil {
		q.s = &lzSearcher{
			finder: new(lz.HashChain),
			opts: searchOptions{
				maxDistance:  q.MaxDistance,
				maxLength:    q.MaxLength,
				fastBytes:    q.FastBytes,
				minLength:    q.MinLength,
				numHashBytes: q.NumHashBytes,
				cutValue:     q.CutValue,
				chainBlocks:  q.ChainBlocks,
				lazy:         q.Lazy,
				dict:         q.Dict,
			},
		}
	}
	return q.s
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (q *HashChain) FindMatches(dst []Match, src []byte) []Match {
	return q.searcher().findMatches(dst, src)
}

func (q *HashChain) Reset() {
	if q.s != nil {
		q.s.reset()
	}
}

// Search looks for matches at pos, after the block containing it has been
// passed to FindMatches; see BinaryTree.Search.
func (q *HashChain) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	return q.searcher().Search(dst, pos, min, max)
}
