package postprocessors

import (
	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/postprocessors/chunker"
)

// Config keys understood by the built-in chunker.
const (
	KeyChunkSize     = "chunk_size"
	KeyOverlap       = "overlap"
	KeyRetryAttempts = "retry_attempts"
	KeyRetryStep     = "retry_step"
)

// RegisterDefaults registers all built-in chunkers with the registry.
// Every chunker sizes windows with tok.
func RegisterDefaults(r *Registry, tok driven.Tokenizer) {
	r.Register("chunker", func(cfg map[string]any) (driven.Chunker, error) {
		return buildChunker(cfg, tok), nil
	})
}

// ConfigFrom converts processing parameters into chunker config.
func ConfigFrom(cfg domain.Config) map[string]any {
	return map[string]any{
		KeyChunkSize: cfg.ChunkSize,
		KeyOverlap:   cfg.ChunkOverlap,
	}
}

// buildChunker creates a chunker from generic config.
// Supported config keys:
//   - chunk_size (int): Tokens per window (default: 300)
//   - overlap (int): Tokens shared between windows (default: 50)
//   - retry_attempts (int): Backed-off offset searches (default: 3)
//   - retry_step (int): Backoff distance in bytes (default: overlap*5)
func buildChunker(cfg map[string]any, tok driven.Tokenizer) *chunker.Processor {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, KeyChunkSize); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg[KeyOverlap]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, KeyOverlap)))
		}
		attempts := getIntFromConfig(cfg, KeyRetryAttempts)
		step := getIntFromConfig(cfg, KeyRetryStep)
		if attempts > 0 || step > 0 {
			opts = append(opts, chunker.WithRetryPolicy(chunker.RetryPolicy{MaxAttempts: attempts, Step: step}))
		}
	}

	return chunker.New(tok, opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
