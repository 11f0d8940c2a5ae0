package getex

// InvalidationType is the strength of a memory write-barrier notification.
type InvalidationType int

const (
	// InvalidateDefault forces a full-hash recheck of overlapping entries
	// on their next bind.
	InvalidateDefault InvalidationType = iota

	// InvalidateSafe also forces a recheck but signals low priority: the
	// entry keeps enough accumulated frames that its full-hash backoff
	// restarts long instead of from scratch.
	InvalidateSafe

	// InvalidateAll marks bulk or coarse writes (DMA-wide). These are
	// frequent and usually benign for texture data, so overlapping entries
	// only accumulate soft invalidation pressure instead of rehashing.
	InvalidateAll
)

// safeFrameCount is the numFrames value a Safe invalidation resets to, so
// the backoff restarts near its cap instead of at zero.
const safeFrameCount = 256

// Invalidate notifies the cache that [addr, addr+size) was written. The
// caller must sequence this before the next overlapping Bind.
func (c *Cache) Invalidate(addr, size uint32, typ InvalidationType) {
	addr &= addrMask
	end := addr + size
	for _, e := range c.cache {
		if e.addr >= end || e.addr+e.sizeInRAM <= addr {
			continue
		}
		if e.status == statusReliable {
			e.status = statusHashing
		}
		if typ == InvalidateAll {
			e.invalidHint++
			continue
		}
		c.stats.Invalidations++
		e.invalidatedFrame = c.frame
		if typ == InvalidateSafe {
			e.numFrames = safeFrameCount
		} else {
			e.numFrames = 0
		}
		e.nextFullHash = 0
	}
}

// InvalidateAllEntries demotes every Reliable entry and bumps every soft
// invalidation counter. Used for global memory barriers.
func (c *Cache) InvalidateAllEntries() {
	for _, e := range c.cache {
		if e.status == statusReliable {
			e.status = statusHashing
		}
		e.invalidHint++
	}
}
