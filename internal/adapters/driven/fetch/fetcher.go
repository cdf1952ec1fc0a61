// Package fetch downloads candidate source pages and extracts their main text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
	htmlnorm "github.com/h24486064/plagiarism-detection/internal/normalisers/html"
	"github.com/h24486064/plagiarism-detection/internal/normalisers/plaintext"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	// DefaultMaxBytes caps the downloaded body.
	DefaultMaxBytes = 10 << 20

	// userAgent identifies the fetcher to web servers.
	userAgent = "Mozilla/5.0 (compatible; plagcheck/1.0)"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds each download.
	Timeout time.Duration

	// MaxBytes caps the downloaded body.
	MaxBytes int64

	// Documents normalises non-HTML bodies such as PDF. Optional.
	Documents driven.NormaliserRegistry
}

// Fetcher downloads pages over HTTP.
// HTML is reduced to its main article with readability, falling back to tag
// stripping. Plain text passes through. Other types go to the document
// normalisers when configured.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	documents driven.NormaliserRegistry
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		maxBytes:  cfg.MaxBytes,
		documents: cfg.Documents,
	}
}

// Fetch returns the page title and cleaned text.
func (f *Fetcher) Fetch(ctx context.Context, link string) (title, text string, err error) {
	pageURL, err := url.Parse(link)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", "", fmt.Errorf("%w: not a web URL: %q", domain.ErrInvalidInput, link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,application/pdf;q=0.8,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch %s: status %d", link, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", link, err)
	}

	mimeType := "text/html"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = parsed
		}
	}
	logger.Debug("Fetched %s: %d bytes of %s", link, len(body), mimeType)

	switch mimeType {
	case "text/html", "application/xhtml+xml":
		title, text = extractHTML(body, pageURL)
	case "text/plain":
		text = plaintext.Decode(body)
	default:
		title, text, err = f.normalise(ctx, link, mimeType, body)
		if err != nil {
			return "", "", err
		}
	}

	return strings.TrimSpace(title), cleanText(text), nil
}

// normalise hands a non-HTML body to the document normalisers.
func (f *Fetcher) normalise(ctx context.Context, link, mimeType string, body []byte) (title, text string, err error) {
	if f.documents == nil {
		return "", "", fmt.Errorf("%w: %s from %s", domain.ErrUnsupportedType, mimeType, link)
	}
	result, err := f.documents.Normalise(ctx, &domain.RawDocument{
		URI:      link,
		MIMEType: mimeType,
		Content:  body,
	})
	if err != nil {
		return "", "", fmt.Errorf("normalise %s: %w", link, err)
	}
	return result.Document.Title, result.Document.Content, nil
}

// extractHTML returns the readable article of an HTML page, or the whole
// page's text when readability finds nothing.
func extractHTML(body []byte, pageURL *url.URL) (title, text string) {
	content := plaintext.Decode(body)

	article, err := readability.FromReader(strings.NewReader(content), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.Title, article.TextContent
	}
	if err != nil {
		logger.Debug("Readability failed for %s, stripping tags: %v", pageURL, err)
	}
	return htmlnorm.ExtractTitle(content), htmlnorm.StripHTML(content)
}

// cleanText trims lines and collapses runs of blank lines.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
