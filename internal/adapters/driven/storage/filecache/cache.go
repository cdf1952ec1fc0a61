package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure ContentCache implements the interface.
var _ driven.ContentCache = (*ContentCache)(nil)

const entryExt = ".json"

// ContentCache is a directory of JSON entries.
type ContentCache struct {
	dir string

	// mu serialises read-modify-write merges within the process.
	mu sync.Mutex
}

// New creates the cache directory if needed and returns a cache rooted there.
func New(dir string) (*ContentCache, error) {
	if dir == "" {
		dir = domain.DefaultConfig().ContentCacheDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating content cache directory: %w", err)
	}
	return &ContentCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *ContentCache) Dir() string {
	return c.dir
}

func (c *ContentCache) path(url string) string {
	return filepath.Join(c.dir, domain.CacheKey(url)+entryExt)
}

// Get returns the cached entry for url.
func (c *ContentCache) Get(ctx context.Context, url string) (domain.ContentEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContentEntry{}, false, err
	}

	data, err := os.ReadFile(c.path(url))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ContentEntry{}, false, nil
	}
	if err != nil {
		return domain.ContentEntry{}, false, fmt.Errorf("reading content entry: %w", err)
	}

	var entry domain.ContentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.ContentEntry{}, false, fmt.Errorf("parsing content entry %s: %w", filepath.Base(c.path(url)), err)
	}
	return entry, true, nil
}

// Merge overlays fields onto the stored JSON object for url and writes it back
// atomically. Keys absent from fields keep their stored values.
func (c *ContentCache) Merge(ctx context.Context, url string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.path(url)
	obj := make(map[string]json.RawMessage)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading content entry: %w", err)
	default:
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("parsing content entry %s: %w", filepath.Base(path), err)
		}
	}

	encoded := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding field %s: %w", k, err)
		}
		encoded[k] = raw
	}
	maps.Copy(obj, encoded)

	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding content entry: %w", err)
	}
	return writeAtomic(path, out)
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path, so readers never observe a partial entry.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming content entry: %w", err)
	}
	return nil
}

// entries lists the cache files.
func (c *ContentCache) entries() ([]fs.DirEntry, error) {
	all, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("listing content cache: %w", err)
	}
	files := all[:0]
	for _, e := range all {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), entryExt) {
			files = append(files, e)
		}
	}
	return files, nil
}

// Stats summarises the cached pages.
func (c *ContentCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	files, err := c.entries()
	if err != nil {
		return domain.CacheStats{}, err
	}

	var stats domain.CacheStats
	for _, e := range files {
		if err := ctx.Err(); err != nil {
			return domain.CacheStats{}, err
		}
		info, err := e.Info()
		if err != nil {
			return domain.CacheStats{}, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		stats.Pages++
		stats.ContentBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			return domain.CacheStats{}, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		var probe struct {
			Embedding []float32 `json:"embedding"`
		}
		if json.Unmarshal(data, &probe) == nil && len(probe.Embedding) > 0 {
			stats.Embedded++
		}
	}
	return stats, nil
}

// Clear removes every entry.
func (c *ContentCache) Clear(ctx context.Context) error {
	_, err := c.remove(ctx, func(fs.FileInfo) bool { return true })
	return err
}

// Prune removes entries last written before cutoff.
func (c *ContentCache) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	return c.remove(ctx, func(info fs.FileInfo) bool { return info.ModTime().Before(cutoff) })
}

func (c *ContentCache) remove(ctx context.Context, match func(fs.FileInfo) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := c.entries()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := e.Info()
		if err != nil {
			return removed, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		if !match(info) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("removing %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
