// Package heuristic estimates AI authorship from writing style alone.
//
// Two signals are combined: how uniform the sentence lengths are (machine
// text tends to keep a steady rhythm) and the moving-average type-token
// ratio (machine text repeats a narrower vocabulary). Neither needs a model,
// so the scorer works offline and is used whenever no LLM is configured.
package heuristic

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.AIScorer = (*Scorer)(nil)

const (
	// DefaultWindow is the MATTR window in tokens.
	DefaultWindow = 50

	// uniformityWeight is the share of the score given to sentence rhythm.
	uniformityWeight = 0.6

	// cvCeiling is the coefficient of variation treated as fully human.
	cvCeiling = 0.6

	// MATTR range mapped onto [1, 0] AI-likeness.
	mattrLow  = 0.45
	mattrHigh = 0.85

	// minTokens is the length below which the text is too short to judge.
	minTokens = 20
)

// Scorer implements the style heuristic.
type Scorer struct {
	window int
	fold   cases.Caser
}

// New creates a scorer with the given MATTR window. A non-positive window
// uses DefaultWindow.
func New(window int) *Scorer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Scorer{
		window: window,
		fold:   cases.Fold(),
	}
}

// Score returns the AI-authorship likelihood of text in [0, 100].
// Texts too short to judge score 0.
func (s *Scorer) Score(text string) float64 {
	tokens := s.tokens(text)
	if len(tokens) < minTokens {
		return 0
	}

	uniformity := Uniformity(SentenceLengths(text))
	diversity := 1 - clamp01((MATTR(tokens, s.window)-mattrLow)/(mattrHigh-mattrLow))

	score := 100 * (uniformityWeight*uniformity + (1-uniformityWeight)*diversity)
	return math.Round(score*10) / 10
}

// tokens splits text into case-folded words; each Han, Hiragana, Katakana or
// Hangul rune counts as one token.
func (s *Scorer) tokens(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, s.fold.String(word.String()))
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case isCJK(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// SentenceLengths returns the rune length of each sentence, ignoring
// whitespace. Sentences end at Western or full-width terminators.
func SentenceLengths(text string) []int {
	var lengths []int
	n := 0
	for _, r := range text {
		switch {
		case isTerminator(r):
			if n > 0 {
				lengths = append(lengths, n)
			}
			n = 0
		case !unicode.IsSpace(r):
			n++
		}
	}
	if n > 0 {
		lengths = append(lengths, n)
	}
	return lengths
}

// Uniformity maps the coefficient of variation of lengths onto [0, 1], where
// 1 means every sentence has the same length. Fewer than three sentences
// give the neutral value 0.5.
func Uniformity(lengths []int) float64 {
	if len(lengths) < 3 {
		return 0.5
	}

	var sum float64
	for _, l := range lengths {
		sum += float64(l)
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0.5
	}

	var sq float64
	for _, l := range lengths {
		d := float64(l) - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(lengths))) / mean
	return 1 - clamp01(cv/cvCeiling)
}

// MATTR is the moving-average type-token ratio of tokens over the given
// window. Shorter inputs use a single window covering all tokens.
func MATTR(tokens []string, window int) float64 {
	if len(tokens) == 0 {
		return 0
	}
	if window <= 0 || window > len(tokens) {
		window = len(tokens)
	}

	counts := make(map[string]int, window)
	for _, t := range tokens[:window] {
		counts[t]++
	}
	total := float64(len(counts)) / float64(window)
	windows := 1

	for i := window; i < len(tokens); i++ {
		out := tokens[i-window]
		counts[out]--
		if counts[out] == 0 {
			delete(counts, out)
		}
		counts[tokens[i]]++
		total += float64(len(counts)) / float64(window)
		windows++
	}
	return total / float64(windows)
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '；':
		return true
	}
	return false
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
