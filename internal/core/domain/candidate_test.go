package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCacheKey_Deterministic tests identical input maps to identical key
func TestCacheKey_Deterministic(t *testing.T) {
	a := CacheKey("https://example.com/page")
	b := CacheKey("https://example.com/page")
	c := CacheKey("https://example.com/other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

// TestCacheKey_KnownValue tests the key is the hex SHA-256 digest
func TestCacheKey_KnownValue(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		CacheKey(""))
}

// TestContentEntry_HasEmbedding tests embedding model matching
func TestContentEntry_HasEmbedding(t *testing.T) {
	tests := []struct {
		name     string
		entry    ContentEntry
		model    string
		expected bool
	}{
		{"no embedding", ContentEntry{CleanedText: "x"}, "m", false},
		{"same model", ContentEntry{Embedding: []float32{1}, EmbeddingModel: "m"}, "m", true},
		{"other model", ContentEntry{Embedding: []float32{1}, EmbeddingModel: "m"}, "n", false},
		{"untagged embedding", ContentEntry{Embedding: []float32{1}}, "m", true},
		{"any model", ContentEntry{Embedding: []float32{1}, EmbeddingModel: "m"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.HasEmbedding(tt.model))
		})
	}
}
