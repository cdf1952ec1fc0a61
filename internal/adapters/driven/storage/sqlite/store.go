package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Store is a SQLite database holding the query cache.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore opens (creating if needed) the database at dbPath.
// If dbPath is empty, defaults to cache/queries.sqlite.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = domain.DefaultConfig().QueryCachePath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// QueryCache returns a QueryCache interface backed by this store.
func (s *Store) QueryCache() driven.QueryCache {
	return &queryCache{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_query_cache.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Query Cache ====================

// queryCache implements driven.QueryCache.
type queryCache struct {
	store *Store
}

var _ driven.QueryCache = (*queryCache)(nil)

// Get returns the cached results for query.
func (c *queryCache) Get(ctx context.Context, query string) ([]domain.SearchResult, bool, error) {
	var resultsJSON string
	err := c.store.db.QueryRowContext(ctx,
		`SELECT results_json FROM query_cache WHERE query_hash = ?`,
		domain.CacheKey(query),
	).Scan(&resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying query cache: %w", err)
	}

	var results []domain.SearchResult
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, false, fmt.Errorf("unmarshalling cached results: %w", err)
	}
	return results, true, nil
}

// Set stores results for query, overwriting any previous entry.
func (c *queryCache) Set(ctx context.Context, query string, results []domain.SearchResult) error {
	if results == nil {
		results = []domain.SearchResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO query_cache (query_hash, query, results_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query_hash) DO UPDATE SET
			query = excluded.query,
			results_json = excluded.results_json,
			created_at = excluded.created_at
	`, domain.CacheKey(query), query, string(resultsJSON), c.store.now().Unix())
	if err != nil {
		return fmt.Errorf("saving query cache entry: %w", err)
	}
	return nil
}

// Count returns the number of cached queries.
func (c *queryCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting query cache: %w", err)
	}
	return n, nil
}

// Clear removes every cached query.
func (c *queryCache) Clear(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx, `DELETE FROM query_cache`); err != nil {
		return fmt.Errorf("clearing query cache: %w", err)
	}
	return nil
}

// Prune removes entries created before cutoff.
func (c *queryCache) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := c.store.db.ExecContext(ctx,
		`DELETE FROM query_cache WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning query cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return int(n), nil
}
