package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/logger"
	"github.com/h24486064/plagiarism-detection/internal/textnorm"
)

// HeadingTable lists the canonical heading phrases that open and close the
// literature-review section.
type HeadingTable struct {
	// Start phrases open the section.
	Start []string

	// End phrases open the section that follows it.
	End []string
}

// DefaultHeadingTable returns the built-in Chinese and English headings.
func DefaultHeadingTable() HeadingTable {
	return HeadingTable{
		Start: []string{
			"文獻探討",
			"文獻回顧",
			"文獻評述",
			"文献综述",
			"文献回顾",
			"文献探讨",
			"相關文獻",
			"literature review",
			"review of the literature",
			"review of literature",
			"related work",
			"related works",
		},
		End: []string{
			"研究方法",
			"研究設計",
			"研究架構",
			"研究方法與設計",
			"研究设计",
			"第三章",
			"methodology",
			"research methodology",
			"research methods",
			"research method",
			"research design",
			"methods",
			"method",
			"chapter 3",
			"chapter three",
			"chapter iii",
		},
	}
}

// numberingPrefix matches a short section number before a heading:
// "第二章", "chapter 2", "2.", "2.1", "ii.", "貳、".
const numberingPrefix = `(?:第\s*[0-9一二三四五六七八九十]+\s*[章節节]` +
	`|chapter\s*(?:[0-9]+|[ivx]+|one|two|three|four)` +
	`|[0-9]{1,2}(?:\.[0-9]{1,2})*\.?` +
	`|[ivx]{1,4}\.` +
	`|[壹貳參肆伍陸一二三四五六]\s*[、.])`

// heading is one phrase compiled twice: strict requires the heading to end
// its line, loose allows text to follow on the same line. Group 1 captures the
// numbering prefix and group 2 the phrase itself.
type heading struct {
	phrase string
	// numeral is set for phrases that are themselves a number ("第三章").
	numeral bool
	strict  *regexp.Regexp
	loose   *regexp.Regexp
}

var numeralPhrase = regexp.MustCompile(`^(?:` + numberingPrefix + `)$`)

func compileHeading(phrase string) heading {
	var body strings.Builder
	first := true
	for _, r := range textnorm.Normalize(phrase) {
		if unicode.IsSpace(r) {
			continue
		}
		if !first {
			body.WriteString(`\s*`)
		}
		body.WriteString(regexp.QuoteMeta(string(r)))
		first = false
	}

	// Loose matches need a non-letter after the phrase; RE2 \b is ASCII only.
	head := `(?m)^[ \t]*(?:(` + numberingPrefix + `)[ \t:：.、-]*)?(` + body.String() + `)`
	return heading{
		phrase:  phrase,
		numeral: numeralPhrase.MatchString(textnorm.Normalize(phrase)),
		strict:  regexp.MustCompile(head + `[ \t:：.]*\r?$`),
		loose:   regexp.MustCompile(head + `(?:[^\p{L}\p{N}]|$)`),
	}
}

// find returns every occurrence of h in text. Loose occurrences end at the
// phrase and count only when they look like a heading rather than a sentence:
// numbered ("第二章 文獻探討 ...") or followed by a colon ("Methodology: ...").
func (h heading) find(text string) []match {
	var out []match
	for _, loc := range h.strict.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, headingMatch(text, loc[0], loc[1], h.phrase, true))
	}
	for _, loc := range h.loose.FindAllStringSubmatchIndex(text, -1) {
		numbered := loc[2] >= 0 || h.numeral
		phraseEnd := loc[5]
		if !numbered && !colonAt(text, phraseEnd) {
			continue
		}
		out = append(out, headingMatch(text, loc[0], phraseEnd, h.phrase, false))
	}
	return out
}

// colonAt reports whether a colon follows offset i, after optional blanks.
func colonAt(text string, i int) bool {
	rest := strings.TrimLeft(text[i:], " \t")
	return strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "：")
}

// SectionLocator finds the literature-review section in raw document text.
// Patterns are compiled once at construction.
type SectionLocator struct {
	starts        []heading
	ends          []heading
	maxChars      int
	wholeFallback bool
}

// NewSectionLocator compiles the heading table.
func NewSectionLocator(table HeadingTable, cfg domain.Config) *SectionLocator {
	l := &SectionLocator{
		maxChars:      cfg.MaxSectionChars,
		wholeFallback: cfg.WholeDocumentFallback,
	}
	if l.maxChars <= 0 {
		l.maxChars = domain.DefaultMaxSectionChars
	}
	for _, p := range table.Start {
		l.starts = append(l.starts, compileHeading(p))
	}
	for _, p := range table.End {
		l.ends = append(l.ends, compileHeading(p))
	}
	return l
}

// match is a heading occurrence on the normalised surface.
type match struct {
	start, end int
	phrase     string
	strict     bool
}

// before reports whether m sorts before o in document order. At the same
// position the strict match, then the longer match, comes last.
func (m match) before(o match) bool {
	if m.start != o.start {
		return m.start < o.start
	}
	if m.strict != o.strict {
		return !m.strict
	}
	return m.end < o.end
}

// Locate returns the section following the last start heading.
//
// Matching runs on the normalised text; offsets are mapped back so the
// returned Section always satisfies raw[Start:End] == Text. Without a start
// heading it returns domain.ErrSectionNotFound. Without an end heading the
// section is cut at the configured maximum length and marked Truncated.
func (l *SectionLocator) Locate(raw string) (domain.Section, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Section{}, fmt.Errorf("locate section: empty document: %w", domain.ErrSectionNotFound)
	}

	surface := textnorm.Map(raw)

	// 1. Last start heading in document order.
	start, ok := lastMatch(surface.Text, l.starts)
	if !ok {
		if l.wholeFallback {
			logger.Warn("No section heading found, analysing whole document")
			return domain.Section{Text: raw, Start: 0, End: len(raw)}, nil
		}
		return domain.Section{}, fmt.Errorf("locate section: %w", domain.ErrSectionNotFound)
	}
	rawHeadStart := surface.RawStart(start.start)
	rawStart := surface.RawEnd(start.end)
	logger.Debug("Section start heading %q at %d", start.phrase, rawHeadStart)

	section := domain.Section{
		Start:   rawStart,
		Heading: strings.TrimSpace(raw[rawHeadStart:rawStart]),
	}

	// 2. Earliest end heading after the start, across all phrases.
	if end, ok := firstMatchAfter(surface.Text, start.end, l.ends); ok {
		section.End = surface.RawStart(end.start)
		logger.Debug("Section end heading %q at %d", end.phrase, section.End)
	} else {
		// 3. Bounded fallback.
		section.End = advanceRunes(raw, rawStart, l.maxChars)
		section.Truncated = true
		logger.Warn("No end heading after %q, section cut at %d characters", start.phrase, l.maxChars)
	}

	if section.End < section.Start {
		section.End = section.Start
	}
	section.Text = raw[section.Start:section.End]
	return section, nil
}

// lastMatch returns the last heading occurrence in document order, strict
// and loose alike.
func lastMatch(text string, headings []heading) (match, bool) {
	var best match
	found := false
	for _, h := range headings {
		for _, m := range h.find(text) {
			if !found || best.before(m) {
				best, found = m, true
			}
		}
	}
	return best, found
}

// firstMatchAfter returns the earliest occurrence at or after offset in
// document order, regardless of the phrase's position in the table. The full
// text is searched so that line anchors keep their meaning.
func firstMatchAfter(text string, offset int, headings []heading) (match, bool) {
	var best match
	found := false
	for _, h := range headings {
		for _, m := range h.find(text) {
			if m.start < offset {
				continue
			}
			if !found || m.start < best.start {
				best, found = m, true
			}
		}
	}
	return best, found
}

// headingMatch trims leading indentation and trailing blanks so the match
// covers only the heading itself.
func headingMatch(text string, start, end int, phrase string, strict bool) match {
	for start < end && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	for end > start && (text[end-1] == '\r' || text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	return match{start: start, end: end, phrase: phrase, strict: strict}
}

// advanceRunes returns the offset n runes after from, clipped to len(s).
func advanceRunes(s string, from, n int) int {
	i := from
	for count := 0; count < n && i < len(s); count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
