package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Candidate is a web page that may be the source of a Window.
type Candidate struct {
	// URL is the page address.
	URL string

	// Title is the search result title.
	Title string

	// Text is the cleaned page text.
	Text string
}

// Hit is a Candidate judged similar to a Window.
// Hits are derived per query and never persisted.
type Hit struct {
	URL   string
	Title string
	Text  string
	Score float64
}

// SearchResult is one entry of a web search response, as stored in the query cache.
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ContentEntry is the per-URL blob kept in the content cache.
// Fields are optional; a page may be cached before it is embedded.
type ContentEntry struct {
	URL            string    `json:"url,omitempty"`
	Title          string    `json:"title,omitempty"`
	CleanedText    string    `json:"cleaned_text,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	FetchedAt      time.Time `json:"fetched_at,omitzero"`
}

// HasEmbedding reports whether the entry carries an embedding made by model.
// An empty model name matches any embedding.
func (e ContentEntry) HasEmbedding(model string) bool {
	if len(e.Embedding) == 0 {
		return false
	}
	return model == "" || e.EmbeddingModel == "" || e.EmbeddingModel == model
}

// Content cache field names, used when merging partial entries.
const (
	FieldURL            = "url"
	FieldTitle          = "title"
	FieldCleanedText    = "cleaned_text"
	FieldEmbedding      = "embedding"
	FieldEmbeddingModel = "embedding_model"
	FieldFetchedAt      = "fetched_at"
)

// CacheKey returns the cache key for s: the lowercase hex SHA-256 of its bytes.
// Identical input always yields the identical key.
func CacheKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheStats summarises the contents of the cache store.
type CacheStats struct {
	Queries      int
	Pages        int
	Embedded     int
	ContentBytes int64
}
