package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

const raw = "Literature Review\nFirst copied sentence. Second AI sentence. Third <b>plain</b>.\nMethods\n"

func window(seq int, text string) domain.Window {
	start := strings.Index(raw, text)
	return domain.Window{
		ID:         "doc.txt#" + text[:5],
		DocumentID: "doc.txt",
		Sequence:   seq,
		Text:       strings.ToLower(text),
		Start:      start,
		End:        start + len(text),
		TokenCount: len(strings.Fields(text)),
	}
}

func testReport() *domain.Report {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Report{
		RunID:    "run-1",
		Document: domain.Document{ID: "doc.txt", Content: raw},
		Section: domain.Section{
			Heading: "Literature Review",
			Start:   0,
			End:     len(raw) - len("Methods\n"),
		},
		Status:  domain.StatusComplete,
		Windows: 3,
		Findings: []domain.Finding{
			{
				Window:  window(0, "First copied sentence."),
				AIScore: 20,
				Hit: &domain.Hit{
					URL:   "https://example.com/source?a=1&b=2",
					Title: "Source",
					Text:  "First copied sentence, in the original.",
					Score: 0.93,
				},
				Verdict: domain.Verdict{WebPlagiarism: true, Confidence: 90, Justification: "Near copy"},
			},
			{
				Window:  window(1, "Second AI sentence."),
				AIScore: 92,
				Verdict: domain.Verdict{AIGenerated: true, Confidence: 92, Justification: "AI score 92.0"},
			},
			{
				Window:  window(2, "Third <b>plain</b>."),
				AIScore: 40,
				Hit:     &domain.Hit{URL: "https://example.com/other", Score: 0.85},
				Verdict: domain.Verdict{Confidence: 30, Justification: `Looks "similar"`},
			},
		},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func TestHighlight(t *testing.T) {
	r := testReport()
	segments := Highlight(raw, r.Findings)

	var rebuilt strings.Builder
	var kinds []domain.FindingKind
	for _, s := range segments {
		rebuilt.WriteString(s.Text)
		if s.Kind != "" {
			kinds = append(kinds, s.Kind)
		}
	}
	assert.Equal(t, raw, rebuilt.String())
	assert.Equal(t, []domain.FindingKind{domain.FindingPlagiarism, domain.FindingAI, domain.FindingSuspect}, kinds)
	assert.Equal(t, "Literature Review\n", segments[0].Text)
	assert.Equal(t, "First copied sentence.", segments[1].Text)
	assert.Equal(t, "Near copy (confidence 90%)", segments[1].Tooltip)
}

func TestHighlight_OverlapAndOrder(t *testing.T) {
	text := "aaaa bbbb cccc dddd"
	findings := []domain.Finding{
		{Window: domain.Window{Start: 5, End: 14}, Verdict: domain.Verdict{AIGenerated: true}},
		{Window: domain.Window{Start: 0, End: 9}, Verdict: domain.Verdict{WebPlagiarism: true}},
		{Window: domain.Window{Start: 6, End: 8}},
		{Window: domain.Window{Start: 10, End: 99}},
	}

	segments := Highlight(text, findings)
	require.Len(t, segments, 3)
	assert.Equal(t, Segment{Text: "aaaa bbbb", Kind: domain.FindingPlagiarism, Tooltip: " (confidence 0%)"}, segments[0])
	assert.Equal(t, " cccc", segments[1].Text)
	assert.Equal(t, domain.FindingAI, segments[1].Kind)
	assert.Equal(t, " dddd", segments[2].Text)
	assert.Empty(t, segments[2].Kind)
}

func TestHighlight_NoFindings(t *testing.T) {
	segments := Highlight("plain", nil)
	assert.Equal(t, []Segment{{Text: "plain"}}, segments)
	assert.Empty(t, Highlight("", nil))
}

func TestHTMLWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewHTMLWriter(dir)
	assert.Equal(t, "html", w.Format())

	path, err := w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc.txt_report.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, `<mark class="plagiarism" title="Near copy (confidence 90%)">First copied sentence.</mark>`)
	assert.Contains(t, html, `<mark class="ai"`)
	assert.Contains(t, html, "Third &lt;b&gt;plain&lt;/b&gt;.")
	assert.NotContains(t, html, "<b>plain</b>")
	assert.Contains(t, html, "&#34;similar&#34;")
	assert.Contains(t, html, `href="https://example.com/source?a=1&amp;b=2"`)
	assert.Contains(t, html, "<li>Suspicious windows: 3</li>")
	assert.Contains(t, html, "<li>Web plagiarism: 1</li>")
	assert.Contains(t, html, "<li>AI generated only: 1</li>")
	assert.Contains(t, html, "0.930")

	// No leftover temp files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONWriter(dir)
	assert.Equal(t, "json", w.Format())

	path, err := w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc.txt_summary.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "doc.txt", got["doc_id"])
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, "complete", got["status"])

	summary := got["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["total_suspicious_chunks"])
	assert.EqualValues(t, 1, summary["plagiarism_chunks_count"])
	assert.EqualValues(t, 1, summary["ai_only_chunks_count"])

	details := got["details"].([]any)
	require.Len(t, details, 3)

	first := details[0].(map[string]any)
	assert.Equal(t, "First copied sentence.", first["text"])
	source := first["source"].(map[string]any)
	assert.Equal(t, "https://example.com/source?a=1&b=2", source["url"])
	assert.InDelta(t, 0.93, source["similarity_score"], 1e-9)
	verdict := first["verdict"].(map[string]any)
	assert.Equal(t, true, verdict["web_plagiarism"])

	second := details[1].(map[string]any)
	assert.Nil(t, second["source"])
}

func TestBuildSummary_FallsBackToWindowText(t *testing.T) {
	r := testReport()
	r.Findings[0].Window.End = len(raw) + 10

	s := BuildSummary(r)
	assert.Equal(t, "first copied sentence.", s.Details[0].Text)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("  short  "))

	long := strings.Repeat("é", previewRunes+5)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, previewRunes+3, len([]rune(got)))
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"paper.pdf", "paper.pdf"},
		{"/tmp/papers/paper.docx", "paper.docx"},
		{"a:b?.txt", "a_b_.txt"},
		{"", "document"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fileStem(tt.in))
		})
	}
}
