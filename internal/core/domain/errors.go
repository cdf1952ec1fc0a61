package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document format or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSectionNotFound indicates no start heading was found in the document.
	// It is reported distinctly from a section that was found but is empty.
	ErrSectionNotFound = errors.New("section not found")

	// ErrNothingToAnalyze indicates the located section holds no text.
	// Callers treat it as a status, not a failure.
	ErrNothingToAnalyze = errors.New("nothing to analyze")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// AI scoring and adjudication fall back to heuristics.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Similarity scoring is impossible without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the web search provider is not configured.
	ErrSearchUnavailable = errors.New("web search unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrCacheClosed indicates the cache store handle was used after Close.
	ErrCacheClosed = errors.New("cache closed")
)
