package lz

// A HashChain finds matches by following a linked list of earlier
// positions with the same hash, newest first. It is faster than BinTree to
// update but examines more candidates per search.
//
// The zero value uses 4-byte hashing (HC4); call SetType(2) for HC2.
type HashChain struct {
	matchBase
}

// Create allocates the window, the hash tables and the chain links for a
// history of historySize bytes and matches of up to matchMaxLen bytes. The
// extra window space works as for BinTree.Create.
func (c *HashChain) Create(historySize, keepAddBufferBefore, matchMaxLen, keepAddBufferAfter uint32) error {
	if err := c.create(historySize, keepAddBufferBefore, matchMaxLen, keepAddBufferAfter); err != nil {
		return err
	}
	c.links.alloc(c.cyclicBufferSize, 1)
	return nil
}

// Matches appends the match candidates for the current position to dst and
// moves to the next position.
func (c *HashChain) Matches(dst []Pair) ([]Pair, error) {
	lenLimit, ok := c.lenLimit()
	if !ok {
		return dst, c.movePos()
	}
	w := &c.win
	buf := w.buf
	pos := w.pos
	cur := w.bufferOffset + pos
	matchMinPos := c.matchMinPos()

	dst, curMatch, maxLen := c.shortMatches(dst, matchMinPos)
	chain := c.links.son
	chain[c.cyclicBufferPos] = curMatch

	for count := c.cutValue; curMatch > matchMinPos && count > 0; count-- {
		delta := pos - curMatch
		next := chain[c.links.back(c.cyclicBufferPos, delta)]
		pby1 := w.bufferOffset + curMatch
		if buf[pby1+maxLen] == buf[cur+maxLen] && buf[pby1] == buf[cur] {
			n := matchLen(buf[pby1:], buf[cur:], lenLimit)
			if maxLen < n {
				maxLen = n
				dst = append(dst, Pair{Len: n, Dist: delta - 1})
				if n == lenLimit {
					break
				}
			}
		}
		curMatch = next
	}
	return dst, c.movePos()
}

// Skip links the next num positions into their chains.
func (c *HashChain) Skip(num uint32) error {
	for ; num > 0; num-- {
		if _, ok := c.lenLimit(); ok {
			c.links.son[c.cyclicBufferPos] = c.insertHashes()
		}
		if err := c.movePos(); err != nil {
			return err
		}
	}
	return nil
}

// Peek appends the match candidates for the position index bytes ahead of
// the current one, without linking anything or moving.
func (c *HashChain) Peek(dst []Pair, index uint32) []Pair {
	dst, p, lenLimit, matchMinPos, maxLen, ok := c.peekStart(dst, index)
	if !ok || maxLen == lenLimit {
		return dst
	}
	w := &c.win
	buf := w.buf
	cur := w.bufferOffset + p
	mark := len(dst)
	h2, h3, hv := c.hashes(buf[cur:])
	dst, curMatch, best := c.candidates(dst, p, h2, h3, hv, matchMinPos)

	for count := c.cutValue; curMatch > matchMinPos && count > 0; count-- {
		next := c.links.son[c.links.back(c.cyclicBufferPos, w.pos-curMatch)]
		pby1 := w.bufferOffset + curMatch
		if buf[pby1+best] == buf[cur+best] && buf[pby1] == buf[cur] {
			n := matchLen(buf[pby1:], buf[cur:], lenLimit)
			if best < n {
				best = n
				dst = append(dst, Pair{Len: n, Dist: p - curMatch - 1})
				if n == lenLimit {
					break
				}
			}
		}
		curMatch = next
	}
	return peekMerge(dst, mark, maxLen)
}
