package fuse

import "sync/atomic"

// resultCache is the single-slot cache holding the most recent
// successful result. Staleness is accepted: concurrent readers may
// observe a slightly outdated value, so an atomic replace/read is all
// the synchronization required.
type resultCache struct {
	slot atomic.Pointer[cacheEntry]
}

type cacheEntry struct {
	value any
}

func (c *resultCache) get() (any, bool) {
	e := c.slot.Load()
	if e == nil {
		return nil, false
	}
	return e.value, true
}

func (c *resultCache) set(value any) {
	c.slot.Store(&cacheEntry{value: value})
}

func (c *resultCache) clear() {
	c.slot.Store(nil)
}
