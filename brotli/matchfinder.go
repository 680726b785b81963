package brotli

import (
	"github.com/andybalholm/brotli/matchfinder"
	"github.com/lzkit/pack"
)

// MatchFinder adapts a matchfinder.MatchFinder, such as matchfinder.M0 or
// matchfinder.M4, to the pack.MatchFinder interface.
type MatchFinder struct {
	MatchFinder matchfinder.MatchFinder

	buf []matchfinder.Match
}

func (m *MatchFinder) Reset() {
	m.MatchFinder.Reset()
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (m *MatchFinder) FindMatches(dst []pack.Match, src []byte) []pack.Match {
	m.buf = m.MatchFinder.FindMatches(m.buf[:0], src)
	for _, x := range m.buf {
		dst = append(dst, pack.Match{
			Unmatched: x.Unmatched,
			Length:    x.Length,
			Distance:  x.Distance,
		})
	}
	return dst
}
