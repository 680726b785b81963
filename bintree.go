package pack

import "github.com/lzkit/pack/lz"

// BinaryTree is an implementation of the MatchFinder interface that indexes
// the input with an lz.BinTree. It finds the longest match available within
// MaxDistance at every position it examines, which makes it slower than a
// hash table but gives the best compression of the match finders here.
type BinaryTree struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 65535.
	MaxDistance int

	// MaxLength is the longest match that will be returned.
	// The default is 273.
	MaxLength int

	// FastBytes is the match length at which the tree search stops. Matches
	// that reach it are extended directly up to MaxLength. The default is
	// MaxLength.
	FastBytes int

	// MinLength is the shortest match that will be used. The default is 4.
	MinLength int

	// NumHashBytes selects 2-byte (BT2) or 4-byte (BT4) hashing.
	// The default is 4.
	NumHashBytes int

	// CutValue limits the number of tree nodes visited per position.
	// The default depends on FastBytes.
	CutValue int

	// ChainBlocks allows matches to refer to data in previous blocks.
	ChainBlocks bool

	// Lazy selects a LazyParser instead of a GreedyParser.
	Lazy bool

	// Dict is data that matches may refer to as if it came before the
	// stream. Without ChainBlocks it precedes every block.
	Dict []byte

	s *lzSearcher
}

func (b *BinaryTree) searcher() *lzSearcher {
	if b.s == nil {
		b.s = &lzSearcher{
			finder: new(lz.BinTree),
			opts: searchOptions{
				maxDistance:  b.MaxDistance,
				maxLength:    b.MaxLength,
				fastBytes:    b.FastBytes,
				minLength:    b.MinLength,
				numHashBytes: b.NumHashBytes,
				cutValue:     b.CutValue,
				chainBlocks:  b.ChainBlocks,
				lazy:         b.Lazy,
				dict:         b.Dict,
			},
		}
	}
	return b.s
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (b *BinaryTree) FindMatches(dst []Match, src []byte) []Match {
	return b.searcher().findMatches(dst, src)
}

func (b *BinaryTree) Reset() {
	if b.s != nil {
		b.s.reset()
	}
}

// Search looks for matches at pos, after the block containing it has been
// passed to FindMatches. Positions count from the start of Dict, which is
// followed by the blocks since the last Reset, or only the latest block
// without ChainBlocks. It is mainly useful to a custom Parser.
func (b *BinaryTree) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	return b.searcher().Search(dst, pos, min, max)
}
