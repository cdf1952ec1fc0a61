package normalisers

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/docx"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/html"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/markdown"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/pdf"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest-priority normaliser that
// supports their MIME type.
type Registry struct {
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
	}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	for _, mimeType := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mimeType], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mimeType] = list
	}
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mimeType := range r.byMIME {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

// Normalise transforms a raw document using the best matching normaliser.
// An unknown MIME type returns domain.ErrUnsupportedType.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	list := r.byMIME[raw.MIMEType]
	if len(list) == 0 {
		return nil, fmt.Errorf("%s (%s): %w", raw.URI, raw.MIMEType, domain.ErrUnsupportedType)
	}
	return list[0].Normalise(ctx, raw)
}

// ReadFile loads a submission from disk and normalises it.
// The document ID is the file's base name.
func (r *Registry) ReadFile(ctx context.Context, path string) (domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	raw := &domain.RawDocument{
		URI:      path,
		MIMEType: DetectMIMEType(path),
		Content:  content,
	}
	logger.Debug("Reading %s as %s (%d bytes)", path, raw.MIMEType, len(content))

	result, err := r.Normalise(ctx, raw)
	if err != nil {
		return domain.Document{}, err
	}

	doc := result.Document
	doc.ID = filepath.Base(path)
	return doc, nil
}

// Supports reports whether path has an extension a normaliser handles.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byMIME[DetectMIMEType(path)]
	return ok
}

// extMIMETypes covers extensions the mime package maps poorly or not at all.
var extMIMETypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".tex":      "text/x-tex",
	".rst":      "text/x-rst",
	".csv":      "text/csv",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".htm":      "text/html",
	".html":     "text/html",
	".xhtml":    "application/xhtml+xml",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pdf":      "application/pdf",
}

// DetectMIMEType determines the MIME type from file extension.
// Files without an extension are treated as plain text.
func DetectMIMEType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "text/plain"
	}

	if t, ok := extMIMETypes[strings.ToLower(ext)]; ok {
		return t
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType != "" {
		// Strip charset and other parameters.
		if idx := strings.Index(mimeType, ";"); idx != -1 {
			mimeType = strings.TrimSpace(mimeType[:idx])
		}
		return mimeType
	}

	return "application/octet-stream"
}
