package driven

import (
	"context"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// Chunker splits section text into overlapping, offset-tracked windows.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits text into windows. sectionStart is the absolute offset of
	// text within the document and is added to every window's offsets.
	// Empty text returns domain.ErrNothingToAnalyze.
	Chunk(ctx context.Context, text, documentID string, sectionStart int) ([]domain.Window, error)
}
