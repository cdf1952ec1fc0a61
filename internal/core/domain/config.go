package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// Default processing parameters.
const (
	DefaultChunkSize             = 300
	DefaultChunkOverlap          = 50
	DefaultSimilarityThreshold   = 0.82
	DefaultSearchResultsPerQuery = 3
	DefaultMaxSectionChars       = 20000
	DefaultAIFlagThreshold       = 80.0
	DefaultSearchDelay           = 2 * time.Second
	DefaultFetchTimeout          = 15 * time.Second
	DefaultCacheDir              = "cache"
	DefaultReportDir             = "reports"
	DefaultHitPreviewRunes       = 1000
)

// Config holds the processing parameters passed to each component.
type Config struct {
	// ChunkSize is the maximum number of tokens per window.
	ChunkSize int

	// ChunkOverlap is the number of tokens shared by consecutive windows.
	ChunkOverlap int

	// SimilarityThreshold is the minimum cosine score for a Hit.
	SimilarityThreshold float64

	// SearchResultsPerQuery caps the results taken from each web search.
	SearchResultsPerQuery int

	// MaxSectionChars bounds the section when no end heading is found.
	MaxSectionChars int

	// WholeDocumentFallback analyses the whole text when no start heading exists.
	WholeDocumentFallback bool

	// AIFlagThreshold is the AI score above which a window without hits is
	// still reported.
	AIFlagThreshold float64

	// SearchDelay is the minimum gap between successive web searches.
	SearchDelay time.Duration

	// FetchTimeout bounds each page download.
	FetchTimeout time.Duration

	// CacheDir holds the query database and the content directory.
	CacheDir string

	// ReportDir receives generated reports.
	ReportDir string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:             DefaultChunkSize,
		ChunkOverlap:          DefaultChunkOverlap,
		SimilarityThreshold:   DefaultSimilarityThreshold,
		SearchResultsPerQuery: DefaultSearchResultsPerQuery,
		MaxSectionChars:       DefaultMaxSectionChars,
		AIFlagThreshold:       DefaultAIFlagThreshold,
		SearchDelay:           DefaultSearchDelay,
		FetchTimeout:          DefaultFetchTimeout,
		CacheDir:              DefaultCacheDir,
		ReportDir:             DefaultReportDir,
	}
}

// QueryCachePath returns the path of the query cache database.
func (c Config) QueryCachePath() string {
	return filepath.Join(c.CacheDir, "queries.sqlite")
}

// ContentCacheDir returns the directory of per-URL content files.
func (c Config) ContentCacheDir() string {
	return filepath.Join(c.CacheDir, "content")
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidInput, c.ChunkSize, c.ChunkOverlap)
	case c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity threshold must be in [-1, 1], got %v", ErrInvalidInput, c.SimilarityThreshold)
	case c.SearchResultsPerQuery <= 0 || c.SearchResultsPerQuery > 10:
		return fmt.Errorf("%w: search results per query must be in [1, 10], got %d", ErrInvalidInput, c.SearchResultsPerQuery)
	case c.MaxSectionChars <= 0:
		return fmt.Errorf("%w: max section chars must be positive, got %d", ErrInvalidInput, c.MaxSectionChars)
	}
	return nil
}
