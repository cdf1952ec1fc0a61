// Package google implements web search with the Google Custom Search JSON API.
package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// Ensure Searcher implements the interface.
var _ driven.WebSearcher = (*Searcher)(nil)

// maxResults is the per-request cap of the Custom Search API.
const maxResults = 10

// Config holds configuration for the Google searcher.
type Config struct {
	// APIKey is the Custom Search API key.
	APIKey string

	// EngineID is the programmable search engine identifier (cx).
	EngineID string

	// BaseURL overrides the API endpoint, used in tests.
	BaseURL string

	// Delay is the minimum gap between requests.
	Delay time.Duration
}

// Searcher runs queries against a programmable search engine.
type Searcher struct {
	service  *customsearch.Service
	engineID string
	limiter  *RateLimiter
}

// NewSearcher creates a searcher. It returns domain.ErrSearchUnavailable
// when the key or engine ID is missing.
func NewSearcher(ctx context.Context, cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("%w: google search needs an API key and engine ID", domain.ErrSearchUnavailable)
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}

	service, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}

	return &Searcher{
		service:  service,
		engineID: cfg.EngineID,
		limiter:  NewRateLimiter(cfg.Delay),
	}, nil
}

// Name identifies the provider in query cache keys.
func (s *Searcher) Name() string {
	return "google"
}

// Search returns at most limit results for query.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	logger.Debug("Google search: %q", query)
	resp, err := s.service.Cse.List().
		Context(ctx).
		Cx(s.engineID).
		Q(query).
		Num(int64(limit)).
		Do()
	if err != nil {
		if IsRateLimited(err) {
			s.limiter.RecordRateLimitError(0)
		}
		return nil, WrapError(err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			Title: item.Title,
			Link:  item.Link,
		})
	}
	return results, nil
}
