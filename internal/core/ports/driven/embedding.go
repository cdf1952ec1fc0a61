// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// TaskType hints how an embedding will be used.
// Providers that support asymmetric retrieval embed queries and documents differently.
type TaskType string

// Embedding task hints.
const (
	// TaskQuery embeds a short text that is compared against documents.
	TaskQuery TaskType = "query"

	// TaskDocument embeds a document that queries are compared against.
	TaskDocument TaskType = "document"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Gemini (text-embedding-004)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Providers without task support ignore the hint.
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// Cached embeddings are tagged with it.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
