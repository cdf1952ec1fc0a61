// Package chunker splits section text into token-bounded, overlapping windows
// that keep exact offsets into the original document.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
	"github.com/h24486064/plagiarism-detection/internal/textnorm"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of tokens per window.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of tokens shared by consecutive windows.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order when splitting oversized text.
// The empty separator splits between runes.
var DefaultSeparators = []string{
	"\n\n", "\n",
	"。", "！", "？", "；",
	". ", "! ", "? ", "; ",
	" ", "",
}

// Processor splits text into windows sized by a Tokenizer.
// It implements the Chunker interface.
type Processor struct {
	tokenizer  driven.Tokenizer
	chunkSize  int
	overlap    int
	retry      RetryPolicy
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the window size in tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in tokens.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithRetryPolicy sets the offset recovery policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Processor) {
		p.retry = policy
	}
}

// WithSeparators replaces the split separators.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
func New(tokenizer driven.Tokenizer, opts ...Option) *Processor {
	p := &Processor{
		tokenizer:  tokenizer,
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	if p.retry.MaxAttempts <= 0 {
		p.retry.MaxAttempts = DefaultRetryAttempts
	}
	if p.retry.Step <= 0 {
		p.retry.Step = max(p.overlap*5, 1)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process chunks a located section of doc.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, section domain.Section) ([]domain.Window, error) {
	return p.Chunk(ctx, section.Text, doc.ID, section.Start)
}

// Chunk splits text into windows of at most chunkSize tokens, each sharing
// about overlap tokens with its predecessor.
//
// Window offsets are absolute: sectionStart is added to the offset found in
// text. Windows come out with non-decreasing starts, and no window starts
// before its predecessor. Empty text returns domain.ErrNothingToAnalyze.
func (p *Processor) Chunk(ctx context.Context, text, documentID string, sectionStart int) ([]domain.Window, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNothingToAnalyze
	}

	pieces := p.merge(p.split(text, p.separators))
	windows := make([]domain.Window, 0, len(pieces))
	loc := newLocator(text, p.retry)

	for seq, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, exact := loc.find(piece)
		end := clipRune(text, min(start+len(piece), len(text)))
		if !exact {
			logger.Warn("Window %d of %s not found in section text, offsets are approximate", seq, documentID)
		}

		windows = append(windows, domain.Window{
			ID:          uuid.New().String(),
			DocumentID:  documentID,
			Sequence:    seq,
			Text:        textnorm.Normalize(piece),
			Start:       sectionStart + start,
			End:         sectionStart + end,
			TokenCount:  p.tokenizer.Count(piece),
			Approximate: !exact,
		})
	}

	logger.Debug("Chunked %s into %d windows (size=%d, overlap=%d, tokenizer=%s)",
		documentID, len(windows), p.chunkSize, p.overlap, p.tokenizer.Name())

	return windows, nil
}

// clipRune moves i back to the nearest rune boundary in s.
func clipRune(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// firstRuneLen returns the byte length of the first rune of s, at least 1.
func firstRuneLen(s string) int {
	_, size := utf8.DecodeRuneInString(s)
	return max(size, 1)
}
