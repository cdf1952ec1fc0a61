package chunker

import (
	"strings"
	"unicode/utf8"
)

// split breaks text into pieces of fewer than chunkSize tokens, trying each
// separator in turn and recursing with the remaining ones on pieces that are
// still too large. Separators stay attached to the end of the piece they
// terminate, so concatenating the pieces reproduces text.
func (p *Processor) split(text string, separators []string) []string {
	sep, rest := "", []string(nil)
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}

	var out, small []string
	for _, part := range splitKeep(text, sep) {
		if p.tokenizer.Count(part) < p.chunkSize {
			small = append(small, part)
			continue
		}
		if len(small) > 0 {
			out = append(out, small...)
			small = nil
		}
		if len(rest) == 0 {
			out = append(out, part)
		} else {
			out = append(out, p.split(part, rest)...)
		}
	}
	return append(out, small...)
}

// splitKeep splits s after each occurrence of sep. An empty sep splits
// between runes.
func splitKeep(s, sep string) []string {
	if sep == "" {
		parts := make([]string, 0, utf8.RuneCountInString(s))
		for i := 0; i < len(s); {
			_, size := utf8.DecodeRuneInString(s[i:])
			parts = append(parts, s[i:i+size])
			i += size
		}
		return parts
	}
	return strings.SplitAfter(s, sep)
}

// merge packs consecutive pieces into windows of at most chunkSize tokens.
// When a window is full, pieces are dropped from its front until no more
// than overlap tokens remain; those carry over into the next window.
// Windows are whitespace-trimmed and empty windows are skipped.
func (p *Processor) merge(pieces []string) []string {
	var (
		windows []string
		current []string
		counts  []int
		total   int
	)

	emit := func() {
		if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
			windows = append(windows, w)
		}
	}

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		n := p.tokenizer.Count(piece)

		if total+n > p.chunkSize && len(current) > 0 {
			emit()
			for len(current) > 0 && (total > p.overlap || total+n > p.chunkSize) {
				total -= counts[0]
				current, counts = current[1:], counts[1:]
			}
		}

		current = append(current, piece)
		counts = append(counts, n)
		total += n
	}

	if len(current) > 0 {
		emit()
	}
	return windows
}
