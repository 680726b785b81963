package lz

// A BinTree finds matches with a binary search tree per hash bucket, keyed
// by the bytes that follow each position. Inserting a position re-roots
// its bucket's tree at that position, so the tree also serves as a sliding
// history of the last historySize positions.
//
// The zero value uses 4-byte hashing (BT4); call SetType(2) for BT2.
type BinTree struct {
	matchBase
}

// Create allocates the window, the hash tables and the tree for a history
// of historySize bytes and matches of up to matchMaxLen bytes.
// keepAddBufferBefore and keepAddBufferAfter reserve extra window space for
// the caller's lookbehind and lookahead.
func (t *BinTree) Create(historySize, keepAddBufferBefore, matchMaxLen, keepAddBufferAfter uint32) error {
	if err := t.create(historySize, keepAddBufferBefore, matchMaxLen, keepAddBufferAfter); err != nil {
		return err
	}
	t.links.alloc(t.cyclicBufferSize, 2)
	return nil
}

// Matches appends the match candidates for the current position to dst and
// moves to the next position.
func (t *BinTree) Matches(dst []Pair) ([]Pair, error) {
	lenLimit, ok := t.lenLimit()
	if !ok {
		return dst, t.movePos()
	}
	matchMinPos := t.matchMinPos()
	dst, curMatch, maxLen := t.shortMatches(dst, matchMinPos)
	dst = t.descend(dst, true, curMatch, matchMinPos, lenLimit, maxLen)
	return dst, t.movePos()
}

// Skip inserts the next num positions into the tree without reporting
// matches.
func (t *BinTree) Skip(num uint32) error {
	for ; num > 0; num-- {
		if lenLimit, ok := t.lenLimit(); ok {
			matchMinPos := t.matchMinPos()
			curMatch := t.insertHashes()
			t.descend(nil, false, curMatch, matchMinPos, lenLimit, startMaxLen)
		}
		if err := t.movePos(); err != nil {
			return err
		}
	}
	return nil
}

// descend walks the tree from curMatch, splitting it around the current
// position, which becomes the new root. With collect set, every candidate
// longer than maxLen is appended to dst.
func (t *BinTree) descend(dst []Pair, collect bool, curMatch, matchMinPos, lenLimit, maxLen uint32) []Pair {
	w := &t.win
	buf := w.buf
	son := t.links.son
	pos := w.pos
	cur := w.bufferOffset + pos

	ptr0 := t.cyclicBufferPos<<1 + 1
	ptr1 := t.cyclicBufferPos << 1
	len0 := t.numHashDirectBytes()
	len1 := len0

	for count := t.cutValue; ; count-- {
		if curMatch <= matchMinPos || count == 0 {
			son[ptr0] = emptyHashValue
			son[ptr1] = emptyHashValue
			return dst
		}
		delta := pos - curMatch
		cyclicPos := t.links.back(t.cyclicBufferPos, delta) << 1
		pby1 := w.bufferOffset + curMatch

		n := min(len0, len1)
		if buf[pby1+n] == buf[cur+n] {
			n++
			n += matchLen(buf[pby1+n:], buf[cur+n:], lenLimit-n)
			if maxLen < n {
				maxLen = n
				if collect {
					dst = append(dst, Pair{Len: n, Dist: delta - 1})
				}
			}
			if n == lenLimit {
				son[ptr1] = son[cyclicPos]
				son[ptr0] = son[cyclicPos+1]
				return dst
			}
		}
		if buf[pby1+n] < buf[cur+n] {
			son[ptr1] = curMatch
			ptr1 = cyclicPos + 1
			curMatch = son[ptr1]
			len1 = n
		} else {
			son[ptr0] = curMatch
			ptr0 = cyclicPos
			curMatch = son[ptr0]
			len0 = n
		}
	}
}

// Peek appends the match candidates for the position index bytes ahead of
// the current one, without indexing anything or moving. It serves readers
// that pause: a position is only indexed once the bytes after it are known.
func (t *BinTree) Peek(dst []Pair, index uint32) []Pair {
	dst, p, lenLimit, matchMinPos, maxLen, ok := t.peekStart(dst, index)
	if !ok || maxLen == lenLimit {
		return dst
	}
	w := &t.win
	mark := len(dst)
	h2, h3, hv := t.hashes(w.buf[w.bufferOffset+p:])
	dst, curMatch, shortLen := t.candidates(dst, p, h2, h3, hv, matchMinPos)
	dst = t.walk(dst, p, curMatch, matchMinPos, lenLimit, shortLen)
	return peekMerge(dst, mark, maxLen)
}

// walk is descend without the insertion: it follows the tree from curMatch
// toward the bytes at p and appends every candidate longer than maxLen.
func (t *BinTree) walk(dst []Pair, p, curMatch, matchMinPos, lenLimit, maxLen uint32) []Pair {
	w := &t.win
	buf := w.buf
	son := t.links.son
	cur := w.bufferOffset + p
	len0 := t.numHashDirectBytes()
	len1 := len0

	for count := t.cutValue; count > 0 && curMatch > matchMinPos; count-- {
		cyclicPos := t.links.back(t.cyclicBufferPos, w.pos-curMatch) << 1
		pby1 := w.bufferOffset + curMatch

		n := min(len0, len1)
		if buf[pby1+n] == buf[cur+n] {
			n++
			n += matchLen(buf[pby1+n:], buf[cur+n:], lenLimit-n)
			if maxLen < n {
				maxLen = n
				dst = append(dst, Pair{Len: n, Dist: p - curMatch - 1})
			}
			if n == lenLimit {
				return dst
			}
		}
		if buf[pby1+n] < buf[cur+n] {
			curMatch = son[cyclicPos+1]
			len1 = n
		} else {
			curMatch = son[cyclicPos]
			len0 = n
		}
	}
	return dst
}
