package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise converts a DOCX document to a normalised document.
// Each paragraph becomes one line, so headings keep their own line.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", domain.ErrInvalidInput)
	}

	content, err := extractDocumentText(ctx, reader)
	if err != nil {
		return nil, err
	}

	title := extractTitle(reader)
	if title == "" {
		title = plaintext.TitleFromMetadataOrURI(raw)
	}

	doc := domain.Document{
		ID:       uuid.New().String(),
		URI:      raw.URI,
		Title:    title,
		Format:   domain.FormatText,
		Content:  content,
		Metadata: plaintext.CopyMetadata(raw.Metadata),
		ReadAt:   time.Now(),
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "docx"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// openPart returns the contents of a named part of the package.
func openPart(reader *zip.Reader, name string) ([]byte, bool, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, true, err
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		return data, true, err
	}
	return nil, false, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(ctx context.Context, reader *zip.Reader) (string, error) {
	data, ok, err := openPart(reader, "word/document.xml")
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", domain.ErrInvalidInput)
	}
	if !ok {
		return "", fmt.Errorf("word/document.xml not found: %w", domain.ErrInvalidInput)
	}
	return parseDocumentXML(ctx, data)
}

// parseDocumentXML walks the document tokens. Text runs (w:t) are written
// verbatim, w:tab and w:br become a tab and a newline, and every paragraph
// (including those inside table cells) starts a new line. Deleted revisions
// live in w:delText and are skipped.
func parseDocumentXML(ctx context.Context, data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var b strings.Builder
	inText := false
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", domain.ErrInvalidInput)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle returns the title from docProps/core.xml, or "" when absent.
func extractTitle(reader *zip.Reader) string {
	data, ok, err := openPart(reader, "docProps/core.xml")
	if !ok || err != nil {
		return ""
	}

	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
