package site

import (
	"context"
	"sync"
	"time"

	"github.com/isidrok/site/content"
)

// EntryCache is an in-memory cache of indexed entries with TTL.
type EntryCache struct {
	mu      sync.RWMutex
	entries []content.Entry
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewEntryCache creates an EntryCache backed by the given Store.
func NewEntryCache(s *Store, ttl time.Duration) *EntryCache {
	return &EntryCache{store: s, ttl: ttl}
}

func (c *EntryCache) valid() bool {
	return c.entries != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *EntryCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached entries after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *EntryCache) ensureLoaded(ctx context.Context) ([]content.Entry, error) {
	c.mu.RLock()
	if c.valid() {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.entries, nil
	}
	entries, err := c.store.ListEntries(ctx, true)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []content.Entry{}
	}
	c.entries = entries
	c.fetched = time.Now()
	return c.entries, nil
}

// ListEntries returns cached entries newest first, drafts only if requested.
func (c *EntryCache) ListEntries(ctx context.Context, includeDrafts bool) ([]content.Entry, error) {
	entries, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if includeDrafts {
		return entries, nil
	}
	return content.Published(entries), nil
}

// GetEntry returns a single entry by slug from the cache.
func (c *EntryCache) GetEntry(ctx context.Context, slug string) (content.Entry, error) {
	entries, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Entry{}, err
	}
	for _, e := range entries {
		if e.Slug == slug {
			return e, nil
		}
	}
	return content.Entry{}, ErrNotFound
}
