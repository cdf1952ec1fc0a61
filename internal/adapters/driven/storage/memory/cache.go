package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure the caches implement the interfaces.
var (
	_ driven.QueryCache   = (*QueryCache)(nil)
	_ driven.ContentCache = (*ContentCache)(nil)
)

type queryEntry struct {
	results []domain.SearchResult
	created time.Time
}

// QueryCache is an in-memory implementation of driven.QueryCache.
// It backs --no-cache runs and tests.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]queryEntry
	now     func() time.Time
}

// NewQueryCache creates a new in-memory query cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[string]queryEntry),
		now:     time.Now,
	}
}

// Get returns the cached results for query.
func (c *QueryCache) Get(_ context.Context, query string) ([]domain.SearchResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[domain.CacheKey(query)]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(e.results), true, nil
}

// Set stores results for query, overwriting any previous entry.
func (c *QueryCache) Set(_ context.Context, query string, results []domain.SearchResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain.CacheKey(query)] = queryEntry{
		results: slices.Clone(results),
		created: c.now(),
	}
	return nil
}

// Count returns the number of cached queries.
func (c *QueryCache) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Clear removes every entry.
func (c *QueryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// Prune removes entries created before cutoff.
func (c *QueryCache) Prune(_ context.Context, cutoff time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if e.created.Before(cutoff) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, nil
}

type contentEntry struct {
	fields  map[string]json.RawMessage
	written time.Time
}

// ContentCache is an in-memory implementation of driven.ContentCache.
// Entries are kept as JSON objects so merges behave like the file cache.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[string]contentEntry
	now     func() time.Time
}

// NewContentCache creates a new in-memory content cache.
func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]contentEntry),
		now:     time.Now,
	}
}

// Get returns the cached entry for url.
func (c *ContentCache) Get(_ context.Context, url string) (domain.ContentEntry, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[domain.CacheKey(url)]
	c.mu.RUnlock()
	if !ok {
		return domain.ContentEntry{}, false, nil
	}

	data, err := json.Marshal(e.fields)
	if err != nil {
		return domain.ContentEntry{}, false, fmt.Errorf("encoding content entry: %w", err)
	}
	var entry domain.ContentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.ContentEntry{}, false, fmt.Errorf("decoding content entry: %w", err)
	}
	return entry, true, nil
}

// Merge overlays fields onto the entry for url.
func (c *ContentCache) Merge(_ context.Context, url string, fields map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding field %s: %w", k, err)
		}
		encoded[k] = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := domain.CacheKey(url)
	e, ok := c.entries[key]
	if !ok {
		e.fields = make(map[string]json.RawMessage)
	}
	maps.Copy(e.fields, encoded)
	e.written = c.now()
	c.entries[key] = e
	return nil
}

// Stats summarises the cached pages.
func (c *ContentCache) Stats(_ context.Context) (domain.CacheStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := domain.CacheStats{Pages: len(c.entries)}
	for _, e := range c.entries {
		for _, raw := range e.fields {
			stats.ContentBytes += int64(len(raw))
		}
		if hasEmbedding(e.fields[domain.FieldEmbedding]) {
			stats.Embedded++
		}
	}
	return stats, nil
}

// hasEmbedding reports whether raw is a non-empty JSON array.
func hasEmbedding(raw json.RawMessage) bool {
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return false
	}
	return len(vec) > 0
}

// Clear removes every entry.
func (c *ContentCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// Prune removes entries last written before cutoff.
func (c *ContentCache) Prune(_ context.Context, cutoff time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if e.written.Before(cutoff) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed, nil
}
