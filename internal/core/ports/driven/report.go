package driven

import (
	"context"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// ReportWriter renders a check report.
type ReportWriter interface {
	// Format names the output format (e.g., "html", "json").
	Format() string

	// Write renders the report and returns the written file path.
	Write(ctx context.Context, report *domain.Report) (string, error)
}
