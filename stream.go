package pack

import (
	"io"

	"github.com/lzkit/pack/lz"
)

const (
	defaultMaxDistance = 65535
	defaultMaxLength   = 273
)

// lzFinder is the part of lz.BinTree and lz.HashChain that lzSearcher uses.
type lzFinder interface {
	lz.MatchFinder
	SetType(numHashBytes int)
	SetCutValue(v uint32)
	Resume() error
	Peek(dst []lz.Pair, index uint32) []lz.Pair
}

// searchOptions are the settings shared by BinaryTree and HashChain.
type searchOptions struct {
	maxDistance  int
	maxLength    int
	fastBytes    int
	minLength    int
	numHashBytes int
	cutValue     int
	chainBlocks  bool
	lazy         bool
	dict         []byte
}

func (o *searchOptions) setDefaults() {
	if o.maxDistance == 0 {
		o.maxDistance = defaultMaxDistance
	}
	if o.maxLength == 0 {
		o.maxLength = defaultMaxLength
	}
	if o.fastBytes == 0 || o.fastBytes > o.maxLength {
		o.fastBytes = o.maxLength
	}
	if o.minLength == 0 {
		o.minLength = defaultMinLength
	}
	if o.numHashBytes == 0 {
		o.numHashBytes = 4
	}
}

// An lzSearcher drives an lz match finder over the stream made of the
// preset dictionary and the blocks passed to findMatches. With ChainBlocks
// the finder keeps one stream going across blocks and reads each new block
// as it arrives; otherwise every block starts a new stream.
//
// A position is only indexed once fastBytes of data follow it, so that the
// finder never orders its tree on bytes it has not seen. The positions at
// the end of a block that are short of that are searched with Peek, and
// indexed when the next block supplies their lookahead.
type lzSearcher struct {
	opts    searchOptions
	finder  lzFinder
	created bool
	started bool

	feed    blockFeed
	indexed int // positions the finder has moved past
	end     int // bytes given to the finder
	cursor  int
	pairs   []lz.Pair

	greedy GreedyParser
	lazy   LazyParser
}

// blockFeed is the finder's input stream. Blocks are appended as they
// arrive, and Read reports io.EOF whenever everything so far has been read.
type blockFeed struct {
	buf   []byte
	off   int
	total int64
}

func (f *blockFeed) reset() {
	f.buf = f.buf[:0]
	f.off = 0
	f.total = 0
}

func (f *blockFeed) add(p []byte) {
	if f.off == len(f.buf) {
		f.buf = f.buf[:0]
		f.off = 0
	}
	f.buf = append(f.buf, p...)
}

func (f *blockFeed) Read(p []byte) (int, error) {
	if f.off == len(f.buf) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.off:])
	f.off += n
	f.total += int64(n)
	return n, nil
}

func (s *lzSearcher) reset() {
	s.started = false
}

func (s *lzSearcher) findMatches(dst []Match, src []byte) []Match {
	if !s.created {
		s.opts.setDefaults()
		s.finder.SetType(s.opts.numHashBytes)
		// The window keeps enough lookahead to extend a match from
		// fastBytes up to maxLength.
		extra := uint32(s.opts.maxLength - s.opts.fastBytes)
		if err := s.finder.Create(uint32(s.opts.maxDistance), 0, uint32(s.opts.fastBytes), extra); err != nil {
			panic(err)
		}
		if s.opts.cutValue > 0 {
			s.finder.SetCutValue(uint32(s.opts.cutValue))
		}
		s.finder.SetStream(&s.feed)
		s.created = true
	}

	// Reading from memory cannot fail, so neither can the finder.
	start := s.end
	if !s.opts.chainBlocks || !s.started {
		s.feed.reset()
		s.feed.add(s.opts.dict)
		s.feed.add(src)
		if err := s.finder.Init(); err != nil {
			panic(err)
		}
		start = len(s.opts.dict)
		s.indexed = 0
		s.started = true
	} else {
		s.feed.add(src)
		if err := s.finder.Resume(); err != nil {
			panic(err)
		}
	}
	s.end = start + len(src)
	s.cursor = start
	s.index(min(start, s.settled()))

	if s.opts.lazy {
		s.lazy.MinLength = s.opts.minLength
		dst = s.lazy.Parse(dst, s, start, s.end)
	} else {
		s.greedy.MinLength = s.opts.minLength
		dst = s.greedy.Parse(dst, s, start, s.end)
	}
	s.index(s.settled())
	return dst
}

// settled returns the end of the positions that can be indexed: all of
// them when each block is a stream of its own, otherwise those followed by
// at least fastBytes of data.
func (s *lzSearcher) settled() int {
	if !s.opts.chainBlocks {
		return s.end
	}
	return max(s.end-s.opts.fastBytes, 0)
}

// index moves the finder forward to position n.
func (s *lzSearcher) index(n int) {
	if n <= s.indexed {
		return
	}
	if err := s.finder.Skip(uint32(n - s.indexed)); err != nil {
		panic(err)
	}
	s.indexed = n
}

// Search returns the matches at pos, shortest first. Positions must be
// requested in increasing order; a position behind the cursor yields
// nothing.
func (s *lzSearcher) Search(dst []AbsoluteMatch, pos, lo, hi int) []AbsoluteMatch {
	if pos < s.cursor || pos < lo || pos >= hi {
		return dst
	}
	s.cursor = pos + 1
	if settled := s.settled(); pos < settled {
		s.index(pos)
		var err error
		s.pairs, err = s.finder.Matches(s.pairs[:0])
		if err != nil {
			panic(err)
		}
		s.indexed++
	} else {
		s.index(settled)
		s.pairs = s.finder.Peek(s.pairs[:0], uint32(pos-s.indexed))
	}
	// offset is pos relative to the finder's current position.
	offset := pos - s.indexed

	for i, p := range s.pairs {
		length := int(p.Len)
		if i == len(s.pairs)-1 && length == s.opts.fastBytes && length < s.opts.maxLength {
			// The finder stops at fastBytes; the window still holds
			// enough data to see how far the match really goes.
			limit := min(s.opts.maxLength, hi-pos) - length
			if limit > 0 {
				length += int(s.finder.MatchLen(int32(offset+length), p.Dist, uint32(limit)))
			}
		}
		if pos+length > hi {
			length = hi - pos
		}
		dst = append(dst, AbsoluteMatch{
			Start: pos,
			End:   pos + length,
			Match: pos - int(p.Dist) - 1,
		})
	}
	return dst
}
