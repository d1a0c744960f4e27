package trend

import "sync/atomic"

// Cache holds the most recently published snapshot. Publish swaps a single
// pointer, so readers see either the previous or the new snapshot, never a mix.
type Cache struct {
	current atomic.Pointer[Snapshot]
}

// NewCache creates an empty cache. Current returns an empty snapshot until
// the first Publish.
func NewCache() *Cache {
	return &Cache{}
}

// Publish replaces the visible snapshot. A nil snapshot is ignored.
func (c *Cache) Publish(s *Snapshot) {
	if s == nil {
		return
	}
	c.current.Store(s)
}

// Current returns the latest published snapshot, or an empty one on cold start.
func (c *Cache) Current() *Snapshot {
	if s := c.current.Load(); s != nil {
		return s
	}
	return emptySnapshot
}

// Labels returns the current trending labels in rank order.
func (c *Cache) Labels() []string {
	return c.Current().Labels()
}

// Ready reports whether any snapshot has been published.
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}
