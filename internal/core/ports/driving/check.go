package driving

import (
	"context"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// CheckService runs the detection pipeline on submissions.
type CheckService interface {
	// Check reads the file at path and runs the full pipeline on it.
	// A missing section or an empty section is reported through
	// Report.Status, not as an error.
	Check(ctx context.Context, path string) (*domain.Report, error)

	// CheckDocument runs the pipeline on an already loaded document.
	CheckDocument(ctx context.Context, doc domain.Document) (*domain.Report, error)

	// Section reads the file at path and returns the located section.
	Section(ctx context.Context, path string) (domain.Document, domain.Section, error)

	// Chunks reads the file at path and returns the windows of its section.
	Chunks(ctx context.Context, path string) ([]domain.Window, error)

	// Supports reports whether the file type of path can be checked.
	Supports(path string) bool
}
