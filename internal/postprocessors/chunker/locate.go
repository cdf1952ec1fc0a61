package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultRetryAttempts is the default number of backed-off searches after the
// forward search fails.
const DefaultRetryAttempts = 3

// RetryPolicy controls how a window is re-located when the forward search
// from the cursor fails. Attempt k (1-based) searches from cursor - k*Step,
// never before the previous window's start. It is a best-effort heuristic:
// when every attempt fails the window is placed at the cursor and flagged
// approximate.
type RetryPolicy struct {
	// MaxAttempts is the number of backed-off searches.
	MaxAttempts int

	// Step is the backoff distance in bytes.
	Step int
}

// locator finds successive windows in the section text.
// cursor only moves forward; floor is the previous window's start.
type locator struct {
	text   string
	policy RetryPolicy
	cursor int
	floor  int
}

func newLocator(text string, policy RetryPolicy) *locator {
	return &locator{text: text, policy: policy}
}

// find returns the offset of window in the text and whether it was found.
func (l *locator) find(window string) (int, bool) {
	start, ok := l.search(window, l.cursor)
	for attempt := 1; !ok && attempt <= l.policy.MaxAttempts; attempt++ {
		from := max(l.floor, l.cursor-attempt*l.policy.Step)
		start, ok = l.search(window, from)
		if from == l.floor {
			break
		}
	}

	if !ok {
		start = min(l.cursor, len(l.text))
	}

	l.floor = start
	l.cursor = start + firstRuneLen(l.text[start:])
	return start, ok
}

// search looks for window at or after from.
func (l *locator) search(window string, from int) (int, bool) {
	for from < len(l.text) && !utf8.RuneStart(l.text[from]) {
		from++
	}
	if from >= len(l.text) {
		return 0, false
	}
	i := strings.Index(l.text[from:], window)
	if i < 0 {
		return 0, false
	}
	return from + i, true
}
