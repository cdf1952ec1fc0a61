package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure JSONWriter implements the interface.
var _ driven.ReportWriter = (*JSONWriter)(nil)

// JSONWriter writes <doc>_summary.json, a machine-readable summary.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer placing files in dir.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Format returns "json".
func (w *JSONWriter) Format() string {
	return "json"
}

// Summary is the JSON document written for a report.
type Summary struct {
	DocID      string         `json:"doc_id"`
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Section    SectionSummary `json:"section"`
	Windows    int            `json:"windows_analysed"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     Counts         `json:"summary"`
	Details    []Detail       `json:"details"`
}

// SectionSummary locates the analysed section.
type SectionSummary struct {
	Heading   string `json:"heading"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Truncated bool   `json:"truncated"`
}

// Counts summarises findings by kind.
type Counts struct {
	Suspicious int `json:"total_suspicious_chunks"`
	Plagiarism int `json:"plagiarism_chunks_count"`
	AIOnly     int `json:"ai_only_chunks_count"`
}

// Detail describes one finding.
type Detail struct {
	Window  WindowSummary  `json:"window"`
	Text    string         `json:"text"`
	AIScore float64        `json:"ai_score"`
	Verdict domain.Verdict `json:"verdict"`
	Source  *SourceSummary `json:"source"`
}

// WindowSummary locates a finding in the raw document.
type WindowSummary struct {
	ID          string `json:"id"`
	Sequence    int    `json:"sequence"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	TokenCount  int    `json:"token_count"`
	Approximate bool   `json:"approximate,omitempty"`
}

// SourceSummary is the web source a finding was compared with.
type SourceSummary struct {
	URL        string  `json:"url"`
	Title      string  `json:"title,omitempty"`
	Similarity float64 `json:"similarity_score"`
	Preview    string  `json:"source_text_preview"`
}

// BuildSummary converts a report into its JSON form.
func BuildSummary(r *domain.Report) Summary {
	s := Summary{
		DocID:  r.Document.ID,
		RunID:  r.RunID,
		Status: string(r.Status),
		Section: SectionSummary{
			Heading:   r.Section.Heading,
			Start:     r.Section.Start,
			End:       r.Section.End,
			Truncated: r.Section.Truncated,
		},
		Windows:    r.Windows,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Counts: Counts{
			Suspicious: len(r.Findings),
			Plagiarism: r.Count(domain.FindingPlagiarism),
			AIOnly:     r.Count(domain.FindingAI),
		},
		Details: make([]Detail, 0, len(r.Findings)),
	}

	for _, f := range r.Findings {
		d := Detail{
			Window: WindowSummary{
				ID:          f.Window.ID,
				Sequence:    f.Window.Sequence,
				Start:       f.Window.Start,
				End:         f.Window.End,
				TokenCount:  f.Window.TokenCount,
				Approximate: f.Window.Approximate,
			},
			Text:    windowText(r.Document.Content, f.Window),
			AIScore: f.AIScore,
			Verdict: f.Verdict,
		}
		if f.Hit != nil {
			d.Source = &SourceSummary{
				URL:        f.Hit.URL,
				Title:      f.Hit.Title,
				Similarity: f.Hit.Score,
				Preview:    preview(f.Hit.Text),
			}
		}
		s.Details = append(s.Details, d)
	}
	return s
}

// Write renders the report and returns the written file path.
func (w *JSONWriter) Write(_ context.Context, r *domain.Report) (string, error) {
	data, err := json.MarshalIndent(BuildSummary(r), "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	return writeFile(w.dir, fileStem(r.Document.ID)+"_summary.json", data)
}

// windowText returns the raw text of w, or its normalised text when the
// offsets do not fit the document.
func windowText(raw string, w domain.Window) string {
	if span := w.Span(raw); span != "" {
		return span
	}
	return w.Text
}
