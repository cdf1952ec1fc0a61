package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// SimilarityService ranks candidate pages by semantic similarity to a window.
// Candidate embeddings are read from and written back to the content cache.
type SimilarityService struct {
	embedder  driven.EmbeddingService
	content   driven.ContentCache
	threshold float64
}

// NewSimilarityService creates a similarity service.
// A threshold outside (0, 1] falls back to the default.
func NewSimilarityService(
	embedder driven.EmbeddingService,
	content driven.ContentCache,
	threshold float64,
) *SimilarityService {
	if threshold <= 0 || threshold > 1 {
		threshold = domain.DefaultSimilarityThreshold
	}
	return &SimilarityService{
		embedder:  embedder,
		content:   content,
		threshold: threshold,
	}
}

// Threshold returns the minimum score a hit must reach.
func (s *SimilarityService) Threshold() float64 {
	return s.threshold
}

// FindTopHits embeds windowText and every candidate, keeps candidates scoring at
// or above the threshold and returns them by descending score. Equal scores keep
// candidate order.
//
// A failed embedding call yields no result: a candidate that cannot be
// embedded is skipped, and a window that cannot be embedded has no hits.
// Content cache failures and cancellation are errors.
func (s *SimilarityService) FindTopHits(
	ctx context.Context, windowText string, candidates []domain.Candidate,
) ([]domain.Hit, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	query, err := s.embedder.Embed(ctx, windowText, driven.TaskQuery)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Embedding window failed, skipping web comparison: %v", err)
		return nil, nil
	}

	var hits []domain.Hit
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vec, ok, err := s.candidateEmbedding(ctx, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		score, ok := CosineSimilarity(query, vec)
		if !ok {
			logger.Debug("Skipping candidate %s: incomparable embedding", c.URL)
			continue
		}
		logger.Debug("Candidate %s scored %.4f", c.URL, score)

		if score >= s.threshold {
			hits = append(hits, domain.Hit{
				URL:   c.URL,
				Title: c.Title,
				Text:  c.Text,
				Score: score,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits, nil
}

// candidateEmbedding returns the cached embedding for c when it was made by the
// current model, otherwise embeds the page text and caches the result. It
// reports false when the candidate cannot be embedded; err is reserved for
// cache failures.
func (s *SimilarityService) candidateEmbedding(ctx context.Context, c domain.Candidate) ([]float32, bool, error) {
	model := s.embedder.ModelName()

	entry, cached, err := s.content.Get(ctx, c.URL)
	if err != nil {
		return nil, false, fmt.Errorf("read content cache: %w", err)
	}
	if cached && entry.HasEmbedding(model) {
		logger.Debug("Embedding cache hit for %s", c.URL)
		return entry.Embedding, true, nil
	}

	text := c.Text
	if strings.TrimSpace(text) == "" && cached {
		text = entry.CleanedText
	}
	if strings.TrimSpace(text) == "" {
		logger.Debug("Skipping candidate %s: no text", c.URL)
		return nil, false, nil
	}

	vec, err := s.embedder.Embed(ctx, text, driven.TaskDocument)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		logger.Warn("Skipping candidate %s: %v", c.URL, err)
		return nil, false, nil
	}

	if err := s.content.Merge(ctx, c.URL, map[string]any{
		domain.FieldEmbedding:      vec,
		domain.FieldEmbeddingModel: model,
	}); err != nil {
		return nil, false, fmt.Errorf("write content cache: %w", err)
	}
	return vec, true, nil
}

// CosineSimilarity returns the cosine of the angle between a and b.
// It reports false for empty vectors, mismatched lengths or a zero norm.
func CosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
