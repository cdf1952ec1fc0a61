package domain

import "time"

// Format tags how a Document's raw text was obtained.
type Format string

// Known document formats.
const (
	// FormatText is structured text (plain text, markdown, HTML, DOCX).
	FormatText Format = "text"

	// FormatPaged is a page-based binary format (PDF) whose text is extracted
	// page by page and is typically noisier.
	FormatPaged Format = "paged"
)

// Document is a submission after normalisation.
// It is immutable once read; all offsets elsewhere refer to Content.
type Document struct {
	// ID is the document identifier, usually the file's base name.
	ID string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title, if the format carries one.
	Title string

	// Format tags how Content was extracted.
	Format Format

	// Content is the full raw text.
	Content string

	// Metadata contains normaliser-specific key-value pairs.
	Metadata map[string]any

	// ReadAt is when the document was read.
	ReadAt time.Time
}

// Section is a contiguous span of a Document's raw text.
// Start is inclusive and End exclusive, both byte offsets into Document.Content,
// and Text == Content[Start:End].
type Section struct {
	// Text is the raw (un-normalised) section text.
	Text string

	// Start is the absolute offset of the first byte of Text.
	Start int

	// End is the absolute offset one past the last byte of Text.
	End int

	// Heading is the start heading as it appears in the raw text.
	Heading string

	// Truncated is true when no end marker was found and the section was cut
	// at the configured maximum length.
	Truncated bool
}

// Len returns the section length in bytes.
func (s Section) Len() int {
	return s.End - s.Start
}

// Window is a bounded, overlapping slice of a Section used as the unit of analysis.
// Windows are created by the chunker and never mutated afterwards.
type Window struct {
	// ID is the unique identifier for the window.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Sequence is the 0-based creation order within the section.
	Sequence int

	// Text is the normalised (case-folded, NFKC) content used for scoring.
	Text string

	// Start is the absolute raw-document offset where the window begins.
	Start int

	// End is the absolute raw-document offset one past the window's last byte.
	End int

	// TokenCount is the size of the window in tokenizer tokens.
	TokenCount int

	// Approximate is set when the window could not be located in the section
	// text and its offsets are best-effort.
	Approximate bool
}

// Span returns the raw text the window was cut from.
func (w Window) Span(raw string) string {
	if w.Start < 0 || w.End > len(raw) || w.Start > w.End {
		return ""
	}
	return raw[w.Start:w.End]
}
