package lz

// emptyHashValue marks an unused hash bucket or tree link. Positions start
// at 1, so 0 never names real data.
const emptyHashValue = 0

// cyclicLinks is the node arena of a match finder: width links per history
// slot, for the most recent size positions. Slot i's links start at
// son[i*width].
type cyclicLinks struct {
	son   []uint32
	size  uint32
	width uint32
}

// alloc sizes the arena for slots history slots, reusing the current
// allocation when the shape is unchanged.
func (c *cyclicLinks) alloc(slots, width uint32) {
	if c.size == slots && c.width == width && c.son != nil {
		return
	}
	c.son = make([]uint32, slots*width)
	c.size = slots
	c.width = width
}

// next returns the slot after cur, wrapping at the end of the arena.
func (c *cyclicLinks) next(cur uint32) uint32 {
	cur++
	if cur >= c.size {
		return 0
	}
	return cur
}

// back returns the slot that was current delta insertions before cur.
// delta must be less than c.size.
func (c *cyclicLinks) back(cur, delta uint32) uint32 {
	if delta <= cur {
		return cur - delta
	}
	return cur - delta + c.size
}
