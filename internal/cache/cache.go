// Package cache keeps previously resolved video responses so that repeated
// requests for the same URL skip the external resolver. Entries are
// disposable projections: losing one never loses data, it only forces a
// re-resolution.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/jaki95/video-workbench/internal/domain"
)

// Entry is the cached response for one resolved URL.
type Entry struct {
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

// Cache is a fingerprint-keyed map of resolved responses, shared across
// request workers.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

// Fingerprint derives the stable cache key for a source URL. Identical URLs
// always hash identically; there is no salt.
func Fingerprint(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the entry stored under fingerprint, if any.
func (c *Cache) Get(fingerprint string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[fingerprint]
	return entry, ok
}

// Put stores an entry under fingerprint, replacing any previous one.
func (c *Cache) Put(fingerprint string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = entry
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// InvalidateByTitle removes every entry whose stored title sanitizes to the
// given key. The cache is not indexed by title, so this is a linear scan; it
// runs once per finalization, right after the registry drops the title.
func (c *Cache) InvalidateByTitle(sanitizedTitle string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for fingerprint, entry := range c.entries {
		if domain.SanitizeTitle(entry.Title) == sanitizedTitle {
			delete(c.entries, fingerprint)
			slog.Debug("Invalidated cache entry", "title", sanitizedTitle, "fingerprint", fingerprint)
		}
	}
}
