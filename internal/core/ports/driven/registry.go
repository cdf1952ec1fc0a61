package driven

import (
	"context"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// DocumentReader reads a submission file from disk into a Document.
type DocumentReader interface {
	// ReadFile detects the file type from its extension and normalises it.
	// Unknown types return domain.ErrUnsupportedType.
	ReadFile(ctx context.Context, path string) (domain.Document, error)

	// Supports reports whether path has a readable file type.
	Supports(path string) bool
}
