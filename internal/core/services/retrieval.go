package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// RetrievalService turns search queries into candidate source pages.
// Search responses go through the query cache and page text through the
// content cache, so repeated runs hit the network only for new material.
type RetrievalService struct {
	searcher driven.WebSearcher
	fetcher  driven.PageFetcher
	queries  driven.QueryCache
	content  driven.ContentCache
	limit    int
	now      func() time.Time
}

// NewRetrievalService creates a retrieval service returning at most
// resultsPerQuery results for each query.
func NewRetrievalService(
	searcher driven.WebSearcher,
	fetcher driven.PageFetcher,
	queries driven.QueryCache,
	content driven.ContentCache,
	resultsPerQuery int,
) *RetrievalService {
	if resultsPerQuery <= 0 {
		resultsPerQuery = domain.DefaultSearchResultsPerQuery
	}
	return &RetrievalService{
		searcher: searcher,
		fetcher:  fetcher,
		queries:  queries,
		content:  content,
		limit:    resultsPerQuery,
		now:      time.Now,
	}
}

// Available reports whether a web searcher is configured.
func (s *RetrievalService) Available() bool {
	return s.searcher != nil
}

// RunSearches runs every query and returns the combined results, deduplicated
// by link in first-seen order. A failed search contributes nothing and is not
// retried. Only cache failures and cancellation are returned as errors.
func (s *RetrievalService) RunSearches(ctx context.Context, queries []string) ([]domain.SearchResult, error) {
	if s.searcher == nil {
		return nil, domain.ErrSearchUnavailable
	}

	seen := make(map[string]bool)
	var combined []domain.SearchResult

	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}

		results, err := s.search(ctx, q)
		if err != nil {
			return nil, err
		}

		for _, r := range results {
			if r.Link == "" || seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			combined = append(combined, r)
		}
	}

	logger.Debug("%d queries produced %d unique links", len(queries), len(combined))
	return combined, nil
}

// search returns results for one query, consulting the query cache first.
func (s *RetrievalService) search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	key := s.searcher.Name() + ":" + query

	cached, ok, err := s.queries.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read query cache: %w", err)
	}
	if ok {
		logger.Debug("Query cache hit: %q", query)
		return cached, nil
	}

	results, err := s.searcher.Search(ctx, query, s.limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Search failed for %q: %v", query, err)
		return nil, nil
	}
	if len(results) > s.limit {
		results = results[:s.limit]
	}

	if err := s.queries.Set(ctx, key, results); err != nil {
		return nil, fmt.Errorf("write query cache: %w", err)
	}
	return results, nil
}

// FetchClean returns the cleaned text of url, from the content cache when
// present, otherwise fetched and cached. It reports false when the page could
// not be fetched or has no text.
func (s *RetrievalService) FetchClean(ctx context.Context, url, title string) (domain.Candidate, bool, error) {
	entry, ok, err := s.content.Get(ctx, url)
	if err != nil {
		return domain.Candidate{}, false, fmt.Errorf("read content cache: %w", err)
	}
	if ok && strings.TrimSpace(entry.CleanedText) != "" {
		if entry.Title != "" {
			title = entry.Title
		}
		return domain.Candidate{URL: url, Title: title, Text: entry.CleanedText}, true, nil
	}

	if s.fetcher == nil {
		return domain.Candidate{}, false, nil
	}

	pageTitle, text, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Candidate{}, false, ctx.Err()
		}
		logger.Warn("Fetch failed for %s: %v", url, err)
		return domain.Candidate{}, false, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Debug("No text extracted from %s", url)
		return domain.Candidate{}, false, nil
	}
	if title == "" {
		title = pageTitle
	}

	if err := s.content.Merge(ctx, url, map[string]any{
		domain.FieldURL:         url,
		domain.FieldTitle:       title,
		domain.FieldCleanedText: text,
		domain.FieldFetchedAt:   s.now().UTC(),
	}); err != nil {
		return domain.Candidate{}, false, fmt.Errorf("write content cache: %w", err)
	}
	return domain.Candidate{URL: url, Title: title, Text: text}, true, nil
}

// Candidates fetches every result and returns those with text, in result order.
func (s *RetrievalService) Candidates(ctx context.Context, results []domain.SearchResult) ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	for _, r := range results {
		c, ok, err := s.FetchClean(ctx, r.Link, r.Title)
		if err != nil {
			return nil, err
		}
		if ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}
