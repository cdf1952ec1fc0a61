package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

//go:embed templates/report.html.tmpl
var htmlTemplate string

var reportTmpl = template.Must(template.New("report").Parse(htmlTemplate))

// Ensure HTMLWriter implements the interface.
var _ driven.ReportWriter = (*HTMLWriter)(nil)

// HTMLWriter writes <doc>_report.html: the document with flagged windows
// highlighted, followed by a table of findings.
type HTMLWriter struct {
	dir string
}

// NewHTMLWriter creates a writer placing files in dir.
func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{dir: dir}
}

// Format returns "html".
func (w *HTMLWriter) Format() string {
	return "html"
}

// Segment is a run of document text, highlighted when Kind is set.
type Segment struct {
	Text    string
	Kind    domain.FindingKind
	Tooltip string
}

type htmlRow struct {
	Sequence      int
	Kind          domain.FindingKind
	Preview       string
	URL           string
	Title         string
	Similarity    float64
	AIScore       float64
	Justification string
	Confidence    float64
}

type htmlData struct {
	DocID      string
	RunID      string
	Finished   string
	Heading    string
	Truncated  bool
	Windows    int
	Suspicious int
	Plagiarism int
	AIOnly     int
	Segments   []Segment
	Rows       []htmlRow
}

// Write renders the report and returns the written file path.
func (w *HTMLWriter) Write(_ context.Context, r *domain.Report) (string, error) {
	data := htmlData{
		DocID:      r.Document.ID,
		RunID:      r.RunID,
		Finished:   r.FinishedAt.Format(time.RFC3339),
		Heading:    r.Section.Heading,
		Truncated:  r.Section.Truncated,
		Windows:    r.Windows,
		Suspicious: len(r.Findings),
		Plagiarism: r.Count(domain.FindingPlagiarism),
		AIOnly:     r.Count(domain.FindingAI),
		Segments:   Highlight(r.Document.Content, r.Findings),
	}
	for _, f := range r.Findings {
		row := htmlRow{
			Sequence:      f.Window.Sequence,
			Kind:          f.Kind(),
			Preview:       preview(windowText(r.Document.Content, f.Window)),
			AIScore:       f.AIScore,
			Justification: f.Verdict.Justification,
			Confidence:    f.Verdict.Confidence,
		}
		if f.Hit != nil {
			row.URL = f.Hit.URL
			row.Title = f.Hit.Title
			row.Similarity = f.Hit.Score
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return writeFile(w.dir, fileStem(r.Document.ID)+"_report.html", buf.Bytes())
}

// Highlight splits raw into segments, marking the span of every finding.
// Windows overlap, so each finding starts no earlier than the end of the
// previous one; a finding fully covered by an earlier one is dropped.
// Findings whose offsets fall outside raw are ignored.
func Highlight(raw string, findings []domain.Finding) []Segment {
	sorted := make([]domain.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Window.Start >= 0 && f.Window.End <= len(raw) && f.Window.Start < f.Window.End {
			sorted = append(sorted, f)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Window.Start < sorted[j].Window.Start
	})

	var segments []Segment
	pos := 0
	for _, f := range sorted {
		start := max(f.Window.Start, pos)
		if start >= f.Window.End {
			continue
		}
		if start > pos {
			segments = append(segments, Segment{Text: raw[pos:start]})
		}
		segments = append(segments, Segment{
			Text:    raw[start:f.Window.End],
			Kind:    f.Kind(),
			Tooltip: tooltip(f),
		})
		pos = f.Window.End
	}
	if pos < len(raw) {
		segments = append(segments, Segment{Text: raw[pos:]})
	}
	return segments
}

func tooltip(f domain.Finding) string {
	return fmt.Sprintf("%s (confidence %.0f%%)", f.Verdict.Justification, f.Verdict.Confidence)
}
