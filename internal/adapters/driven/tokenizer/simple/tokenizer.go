// Package simple provides a deterministic tokenizer that needs no model files.
//
// Each CJK character, each run of letters or digits, and each punctuation
// character counts as one token. Whitespace is free. Counts track BPE
// tokenizers closely enough for window sizing and are stable across runs.
package simple

import (
	"unicode"

	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Name is the tokenizer name.
const Name = "simple"

// Tokenizer counts tokens by character class.
type Tokenizer struct{}

// New creates a simple tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Name returns the tokenizer name.
func (t *Tokenizer) Name() string {
	return Name
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case isCJK(r):
			n++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			if !inWord {
				n++
				inWord = true
			}
		default:
			n++
			inWord = false
		}
	}
	return n
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
