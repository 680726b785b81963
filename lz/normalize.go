package lz

// maxValForNormalize is the position at which stored positions are rebased
// so that they stay inside 31 bits.
const maxValForNormalize = 1<<31 - 1

// normalizeDelta returns how far every stored position is shifted down when
// the current position reaches the normalization threshold. Afterwards the
// current position equals cyclicBufferSize, and anything at or below the
// delta falls outside the history window.
func normalizeDelta(pos, cyclicBufferSize uint32) uint32 {
	return pos - cyclicBufferSize
}

// normalizeLinks rebases items by sub. Entries that would drop to zero or
// below become empty.
func normalizeLinks(items []uint32, sub uint32) {
	for i, v := range items {
		if v <= sub {
			items[i] = emptyHashValue
		} else {
			items[i] = v - sub
		}
	}
}
