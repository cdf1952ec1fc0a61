// Package textnorm canonicalises text for matching and scoring.
//
// Normalisation is NFKC, Unicode case folding, then NFKC again, repeated until
// the text no longer changes. Because it can change the byte length of text
// (full-width forms, ligatures, "ß"), Map keeps a segment-level offset map so
// positions found in normalised text can be translated back to raw offsets.
package textnorm

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// maxPasses bounds the fixed-point iteration in Normalize.
const maxPasses = 3

// Normalize returns the case-folded NFKC form of s.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if isLowerASCII(s) {
		return s
	}
	for range maxPasses {
		next := pass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func pass(s string) string {
	// cases.Caser is stateful and must not be shared.
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return norm.NFKC.String(s)
}

func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || ('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// Mapped is a normalised search surface together with its offset map.
type Mapped struct {
	// Text is the normalised text.
	Text string

	raw  string
	segs []segment
}

// segment records where a normalisation segment starts in both texts.
type segment struct {
	surf int
	raw  int
}

// Map normalises raw segment by segment, recording the raw offset of every
// segment start. A sentinel segment marks the end of both texts.
func Map(raw string) *Mapped {
	m := &Mapped{raw: raw}
	buf := make([]byte, 0, len(raw))

	var it norm.Iter
	it.InitString(norm.NFKC, raw)
	for !it.Done() {
		start := it.Pos()
		it.Next()
		end := it.Pos()

		m.segs = append(m.segs, segment{surf: len(buf), raw: start})
		buf = append(buf, Normalize(raw[start:end])...)
	}
	m.segs = append(m.segs, segment{surf: len(buf), raw: len(raw)})
	m.Text = string(buf)
	return m
}

// Raw returns the original text.
func (m *Mapped) Raw() string {
	return m.raw
}

// RawStart maps a surface offset to the raw offset of the segment containing it.
// Offsets inside a segment round down to the segment start.
func (m *Mapped) RawStart(i int) int {
	k := m.search(i)
	if m.segs[k].surf == i {
		return m.segs[k].raw
	}
	return m.segs[k-1].raw
}

// RawEnd maps an exclusive surface end offset to a raw offset.
// Offsets inside a segment round up to the segment end.
func (m *Mapped) RawEnd(i int) int {
	return m.segs[m.search(i)].raw
}

// search returns the first segment starting at or after surface offset i.
func (m *Mapped) search(i int) int {
	if i < 0 {
		i = 0
	}
	if last := m.segs[len(m.segs)-1].surf; i > last {
		i = last
	}
	return sort.Search(len(m.segs), func(k int) bool {
		return m.segs[k].surf >= i
	})
}
