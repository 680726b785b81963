package lz

import (
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

const (
	hash2Size   = 1 << 10
	hash3Size   = 1 << 16
	bt2HashSize = 1 << 16

	// startMaxLen is the best length before any candidate is found. Only
	// longer candidates are reported.
	startMaxLen = 1
)

// matchBase is the state BinTree and HashChain share: the input window, the
// hash tables, the cyclic link arena and the cursor into it.
type matchBase struct {
	win   InWindow
	hash  []uint32
	links cyclicLinks

	cyclicBufferPos  uint32
	cyclicBufferSize uint32
	matchMaxLen      uint32
	cutValue         uint32
	hashMask         uint32

	// bt2 selects a single exact 2-byte hash instead of the 2/3/4-byte
	// hash array.
	bt2 bool

	// normalizeAt is the position that triggers normalization. Zero means
	// maxValForNormalize.
	normalizeAt uint32
}

// SetType selects the hashing mode. numHashBytes > 2 uses hashes of 2, 3 and
// 4 bytes; anything else uses one exact 2-byte hash. Call it before Create.
func (b *matchBase) SetType(numHashBytes int) {
	b.bt2 = numHashBytes <= 2
}

// SetCutValue limits how many stored positions are examined per call.
// Create resets it to 16 + matchMaxLen/2.
func (b *matchBase) SetCutValue(v uint32) { b.cutValue = v }

func (b *matchBase) numHashDirectBytes() uint32 {
	if b.bt2 {
		return 2
	}
	return 0
}

func (b *matchBase) minMatchCheck() uint32 {
	if b.bt2 {
		return 3
	}
	return 4
}

func (b *matchBase) fixHashSize() uint32 {
	if b.bt2 {
		return 0
	}
	return hash2Size + hash3Size
}

// create sizes the window and the hash tables. The link arena is sized by
// the caller.
func (b *matchBase) create(historySize, keepAddBufferBefore, matchMaxLen, keepAddBufferAfter uint32) error {
	if historySize > maxValForNormalize-256 {
		return errors.Wrapf(ErrHistoryTooLarge, "history size %d", historySize)
	}
	if b.normalizeAt == 0 {
		b.normalizeAt = maxValForNormalize
	}
	b.cutValue = 16 + matchMaxLen>>1

	reserve := (historySize+keepAddBufferBefore+matchMaxLen+keepAddBufferAfter)/2 + 256
	b.win.Create(historySize+keepAddBufferBefore, matchMaxLen+keepAddBufferAfter, reserve)

	b.matchMaxLen = matchMaxLen
	b.cyclicBufferSize = historySize + 1

	hs := uint32(bt2HashSize)
	if !b.bt2 {
		hs = historySize - 1
		hs |= hs >> 1
		hs |= hs >> 2
		hs |= hs >> 4
		hs |= hs >> 8
		hs >>= 1
		hs |= 0xFFFF
		if hs > 1<<24 {
			hs >>= 1
		}
		b.hashMask = hs
		hs++
		hs += b.fixHashSize()
	}
	if uint32(len(b.hash)) != hs {
		b.hash = make([]uint32, hs)
	}
	return nil
}

// Init starts indexing the stream set with SetStream. Positions start at 1.
func (b *matchBase) Init() error {
	if err := b.win.Init(); err != nil {
		return err
	}
	clear(b.hash)
	b.cyclicBufferPos = 0
	b.win.ReduceOffsets(-1)
	return nil
}

func (b *matchBase) SetStream(r io.Reader) { b.win.SetStream(r) }

func (b *matchBase) ReleaseStream() { b.win.ReleaseStream() }

func (b *matchBase) IndexByte(index int32) byte { return b.win.IndexByte(index) }

func (b *matchBase) MatchLen(index int32, distance, limit uint32) uint32 {
	return b.win.MatchLen(index, distance, limit)
}

func (b *matchBase) AvailableBytes() uint32 { return b.win.AvailableBytes() }

// lenLimit returns the longest match worth looking for at the current
// position. ok is false when too few bytes remain to index the position.
func (b *matchBase) lenLimit() (limit uint32, ok bool) {
	w := &b.win
	if w.pos+b.matchMaxLen <= w.streamPos {
		return b.matchMaxLen, true
	}
	limit = w.streamPos - w.pos
	return limit, limit >= b.minMatchCheck()
}

func (b *matchBase) matchMinPos() uint32 {
	if b.win.pos > b.cyclicBufferSize {
		return b.win.pos - b.cyclicBufferSize
	}
	return 0
}

// hashes computes the hash values of the bytes at p. h2 and h3 are only
// set in hash array mode.
func (b *matchBase) hashes(p []byte) (h2, h3, hv uint32) {
	if b.bt2 {
		return 0, 0, uint32(p[0]) ^ uint32(p[1])<<8
	}
	temp := crc32.IEEETable[p[0]] ^ uint32(p[1])
	h2 = temp & (hash2Size - 1)
	temp ^= uint32(p[2]) << 8
	h3 = temp & (hash3Size - 1)
	hv = (temp ^ crc32.IEEETable[p[3]]<<5) & b.hashMask
	return h2, h3, hv
}

// insertHashes records the current position in every hash table and returns
// the position previously stored under the main hash.
func (b *matchBase) insertHashes() (curMatch uint32) {
	w := &b.win
	h2, h3, hv := b.hashes(w.buf[w.bufferOffset+w.pos:])
	if !b.bt2 {
		b.hash[h2] = w.pos
		b.hash[hash2Size+h3] = w.pos
	}
	curMatch = b.hash[b.fixHashSize()+hv]
	b.hash[b.fixHashSize()+hv] = w.pos
	return curMatch
}

// shortMatches updates the hash tables for the current position and
// appends the cheap candidates they reveal. It returns the head of the main
// hash bucket and the best length reported so far.
func (b *matchBase) shortMatches(dst []Pair, matchMinPos uint32) ([]Pair, uint32, uint32) {
	w := &b.win
	h2, h3, hv := b.hashes(w.buf[w.bufferOffset+w.pos:])
	dst, curMatch, maxLen := b.candidates(dst, w.pos, h2, h3, hv, matchMinPos)
	if !b.bt2 {
		b.hash[h2] = w.pos
		b.hash[hash2Size+h3] = w.pos
	}
	b.hash[b.fixHashSize()+hv] = w.pos
	return dst, curMatch, maxLen
}

// candidates appends the candidates for position p found in the hash
// tables without changing them: in hash array mode the most recent 2- and
// 3-byte matches, otherwise a 2-byte match whose third byte differs.
func (b *matchBase) candidates(dst []Pair, p, h2, h3, hv, matchMinPos uint32) ([]Pair, uint32, uint32) {
	w := &b.win
	start := len(dst)
	buf := w.buf
	cur := w.bufferOffset + p
	maxLen := uint32(startMaxLen)

	curMatch := b.hash[b.fixHashSize()+hv]
	if !b.bt2 {
		curMatch2 := b.hash[h2]
		curMatch3 := b.hash[hash2Size+h3]
		if curMatch2 > matchMinPos && buf[w.bufferOffset+curMatch2] == buf[cur] {
			maxLen = 2
			dst = append(dst, Pair{Len: 2, Dist: p - curMatch2 - 1})
		}
		if curMatch3 > matchMinPos && buf[w.bufferOffset+curMatch3] == buf[cur] {
			if curMatch3 == curMatch2 && len(dst) > start {
				dst = dst[:len(dst)-1]
			}
			maxLen = 3
			dst = append(dst, Pair{Len: 3, Dist: p - curMatch3 - 1})
			curMatch2 = curMatch3
		}
		if len(dst) > start && curMatch2 == curMatch {
			// The main hash leads to the same position; the longer search
			// will report it.
			dst = dst[:len(dst)-1]
			maxLen = startMaxLen
		}
	}

	if n := b.numHashDirectBytes(); n != 0 && curMatch > matchMinPos {
		if buf[w.bufferOffset+curMatch+n] != buf[cur+n] {
			maxLen = n
			dst = append(dst, Pair{Len: n, Dist: p - curMatch - 1})
		}
	}
	return dst, curMatch, maxLen
}

// peekStart prepares a read-only search at the position index bytes ahead
// of the current one. Positions from the current one up to p are not in
// the hash tables yet, so they are compared directly and their candidates
// appended to dst, nearest first. ok is false when p has too little data
// left to be searched.
func (b *matchBase) peekStart(dst []Pair, index uint32) (_ []Pair, p, lenLimit, matchMinPos, maxLen uint32, ok bool) {
	w := &b.win
	p = w.pos + index
	if p >= w.streamPos {
		return dst, p, 0, 0, 0, false
	}
	lenLimit = min(b.matchMaxLen, w.streamPos-p)
	if lenLimit < b.minMatchCheck() {
		return dst, p, lenLimit, 0, 0, false
	}
	if p > b.cyclicBufferSize {
		matchMinPos = p - b.cyclicBufferSize
	}

	buf := w.buf
	cur := w.bufferOffset + p
	maxLen = startMaxLen
	for q := p - 1; q >= w.pos && q > matchMinPos; q-- {
		pby1 := w.bufferOffset + q
		if buf[pby1+maxLen] != buf[cur+maxLen] || buf[pby1] != buf[cur] {
			continue
		}
		n := matchLen(buf[pby1:], buf[cur:], lenLimit)
		if n > maxLen {
			maxLen = n
			dst = append(dst, Pair{Len: n, Dist: p - q - 1})
			if n == lenLimit {
				break
			}
		}
	}
	return dst, p, lenLimit, matchMinPos, maxLen, true
}

// peekMerge drops the candidates from mark on that are no longer than
// maxLen, the best length found before mark.
func peekMerge(dst []Pair, mark int, maxLen uint32) []Pair {
	i := mark
	for i < len(dst) && dst[i].Len <= maxLen {
		i++
	}
	return append(dst[:mark], dst[i:]...)
}

// Resume continues indexing after the stream's reader ran dry and was
// given more data.
func (b *matchBase) Resume() error { return b.win.Resume() }

// movePos advances the cyclic cursor and the window, normalizing stored
// positions when the threshold is reached.
func (b *matchBase) movePos() error {
	b.cyclicBufferPos = b.links.next(b.cyclicBufferPos)
	if err := b.win.MovePos(); err != nil {
		return err
	}
	if b.win.pos == b.normalizeAt {
		b.normalize()
	}
	return nil
}

func (b *matchBase) normalize() {
	sub := normalizeDelta(b.win.pos, b.cyclicBufferSize)
	normalizeLinks(b.links.son, sub)
	normalizeLinks(b.hash, sub)
	b.win.ReduceOffsets(int32(sub))
}
