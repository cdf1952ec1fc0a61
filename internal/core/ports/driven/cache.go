package driven

import (
	"context"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// QueryCache stores web search results keyed by the exact query string.
type QueryCache interface {
	// Get returns the cached results for query and whether they were found.
	Get(ctx context.Context, query string) ([]domain.SearchResult, bool, error)

	// Set stores results for query, replacing any previous value.
	Set(ctx context.Context, query string, results []domain.SearchResult) error

	// Count returns the number of cached queries.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Prune removes entries created before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// ContentCache stores per-URL page content and embeddings.
type ContentCache interface {
	// Get returns the cached entry for url and whether it was found.
	Get(ctx context.Context, url string) (domain.ContentEntry, bool, error)

	// Merge overlays fields onto the existing entry for url, creating it if needed.
	// Fields not named are preserved, including ones this program does not know.
	Merge(ctx context.Context, url string, fields map[string]any) error

	// Stats summarises the cached pages.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Prune removes entries last written before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
