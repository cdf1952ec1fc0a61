package driven

import (
	"context"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// WebSearcher runs a web search query.
type WebSearcher interface {
	// Name identifies the provider; it prefixes query cache keys.
	Name() string

	// Search returns at most limit results for query.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// PageFetcher downloads a web page and returns its cleaned main text.
type PageFetcher interface {
	// Fetch returns the page title and cleaned text.
	Fetch(ctx context.Context, url string) (title, text string, err error)
}
