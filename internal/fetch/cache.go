package fetch

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched posting is reused.
const DefaultCacheTTL = 24 * time.Hour

type cacheEntry struct {
	text    string
	expires time.Time
}

// TextCache remembers extracted text per URL for a fixed TTL.
type TextCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewTextCache creates a cache. A non-positive ttl uses DefaultCacheTTL.
func NewTextCache(ttl time.Duration) *TextCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TextCache{ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

// Get returns the cached text for url if it has not expired.
func (c *TextCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.entries, url)
		return "", false
	}
	return e.text, true
}

// Put stores text for url.
func (c *TextCache) Put(url, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{text: text, expires: c.now().Add(c.ttl)}
}
