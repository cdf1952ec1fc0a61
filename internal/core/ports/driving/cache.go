package driving

import (
	"context"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// CacheService manages the query and content caches.
// Eviction is manual: nothing expires unless Clear or Prune is called.
type CacheService interface {
	// Stats summarises both caches.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Clear removes every cached query and page.
	Clear(ctx context.Context) error

	// Prune removes entries older than maxAge and returns the number of
	// queries and pages removed.
	Prune(ctx context.Context, maxAge time.Duration) (queries, pages int, err error)
}
