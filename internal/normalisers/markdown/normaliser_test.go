package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/path/to/thesis.md",
		MIMEType: "text/markdown",
		Content:  []byte("# 碩士論文\n\n## 第二章 文獻探討\n\n本章回顧**相關**研究。\n"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "碩士論文", doc.Title)
	assert.Equal(t, domain.FormatText, doc.Format)
	assert.Equal(t, "碩士論文\n\n第二章 文獻探討\n\n本章回顧相關研究。", doc.Content)
	assert.Equal(t, "text/markdown", doc.Metadata["mime_type"])
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/path/to/my_thesis-draft.md",
		Content: []byte("No heading here."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "my thesis draft", result.Document.Title)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading markers", "## Literature Review", "Literature Review"},
		{"links keep text", "see [Smith](http://x.org) 2020", "see Smith 2020"},
		{"images removed", "a ![fig](f.png) b", "a  b"},
		{"code blocks removed", "a\n```\ncode\n```\nb", "a\n\nb"},
		{"inline code keeps text", "use `go test` here", "use go test here"},
		{"emphasis removed", "**bold** and *it* and ~~gone~~", "bold and it and gone"},
		{"numbered headings kept", "2. Literature Review", "2. Literature Review"},
		{"bullets removed", "- one\n* two", "one\ntwo"},
		{"blockquote removed", "> quoted", "quoted"},
		{"front matter removed", "---\ntitle: x\n---\nbody", "body"},
		{"footnote refs removed", "claim[^1].", "claim."},
		{"crlf normalised", "a\r\nb", "a\nb"},
		{"newlines collapsed", "a\n\n\n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}

func TestStripMarkdown_Table(t *testing.T) {
	got := stripMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.NotContains(t, got, "|")
	assert.NotContains(t, got, "---")
	assert.Contains(t, got, "a b")
}
