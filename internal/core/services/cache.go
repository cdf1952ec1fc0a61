package services

import (
	"context"
	"fmt"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driving"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// Ensure CacheService implements the interface.
var _ driving.CacheService = (*CacheService)(nil)

// CacheService manages the query and content caches together.
type CacheService struct {
	queries driven.QueryCache
	content driven.ContentCache
	now     func() time.Time
}

// NewCacheService creates a cache service.
func NewCacheService(queries driven.QueryCache, content driven.ContentCache) *CacheService {
	return &CacheService{
		queries: queries,
		content: content,
		now:     time.Now,
	}
}

// Stats summarises both caches.
func (s *CacheService) Stats(ctx context.Context) (domain.CacheStats, error) {
	stats, err := s.content.Stats(ctx)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("content cache stats: %w", err)
	}

	n, err := s.queries.Count(ctx)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("query cache count: %w", err)
	}
	stats.Queries = n
	return stats, nil
}

// Clear removes every cached query and page.
func (s *CacheService) Clear(ctx context.Context) error {
	if err := s.queries.Clear(ctx); err != nil {
		return fmt.Errorf("clear query cache: %w", err)
	}
	if err := s.content.Clear(ctx); err != nil {
		return fmt.Errorf("clear content cache: %w", err)
	}
	logger.Info("Cache cleared")
	return nil
}

// Prune removes entries older than maxAge.
func (s *CacheService) Prune(ctx context.Context, maxAge time.Duration) (queries, pages int, err error) {
	if maxAge <= 0 {
		return 0, 0, fmt.Errorf("%w: max age must be positive, got %s", domain.ErrInvalidInput, maxAge)
	}
	cutoff := s.now().Add(-maxAge)

	queries, err = s.queries.Prune(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("prune query cache: %w", err)
	}
	pages, err = s.content.Prune(ctx, cutoff)
	if err != nil {
		return queries, 0, fmt.Errorf("prune content cache: %w", err)
	}
	logger.Info("Pruned %d queries and %d pages older than %s", queries, pages, cutoff.Format(time.RFC3339))
	return queries, pages, nil
}
