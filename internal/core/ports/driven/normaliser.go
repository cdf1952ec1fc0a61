package driven

import (
	"context"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// Normaliser transforms raw submission bytes into a Document.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the raw text of a document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Section location and chunking happen afterwards on Document.Content.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
