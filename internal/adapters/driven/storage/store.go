// Package storage opens the cache store used by a run: the SQLite query cache and
// the file content cache, or in-memory stand-ins when caching is disabled.
package storage

import (
	"fmt"

	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/storage/filecache"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/storage/memory"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/storage/sqlite"
	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Store owns both cache namespaces for the lifetime of a run.
// Callers must Close it.
type Store struct {
	Queries driven.QueryCache
	Content driven.ContentCache

	db *sqlite.Store
}

// Open opens the persistent caches under cfg.CacheDir.
func Open(cfg domain.Config) (*Store, error) {
	db, err := sqlite.NewStore(cfg.QueryCachePath())
	if err != nil {
		return nil, fmt.Errorf("opening query cache: %w", err)
	}

	content, err := filecache.New(cfg.ContentCacheDir())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening content cache: %w", err)
	}

	return &Store{
		Queries: db.QueryCache(),
		Content: content,
		db:      db,
	}, nil
}

// OpenMemory returns a store that keeps nothing beyond the process.
func OpenMemory() *Store {
	return &Store{
		Queries: memory.NewQueryCache(),
		Content: memory.NewContentCache(),
	}
}

// Close releases the underlying database. It is safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
