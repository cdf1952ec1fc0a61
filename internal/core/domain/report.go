package domain

import "time"

// Verdict is the adjudication of a flagged window.
type Verdict struct {
	AIGenerated   bool    `json:"ai_generated"`
	WebPlagiarism bool    `json:"web_plagiarism"`
	Confidence    float64 `json:"confidence"`
	Justification string  `json:"justification"`
}

// Finding is a window that was flagged during a check.
type Finding struct {
	// Window is the flagged window.
	Window Window

	// AIScore is the AI-authorship likelihood in [0, 100].
	AIScore float64

	// Hit is the most similar source, nil when the window was flagged
	// on AI score alone.
	Hit *Hit

	// Verdict is the final judgement for the window.
	Verdict Verdict
}

// Kind classifies the finding for highlighting.
func (f Finding) Kind() FindingKind {
	switch {
	case f.Verdict.WebPlagiarism:
		return FindingPlagiarism
	case f.Verdict.AIGenerated:
		return FindingAI
	default:
		return FindingSuspect
	}
}

// FindingKind classifies a Finding.
type FindingKind string

// Finding kinds, most severe first.
const (
	FindingPlagiarism FindingKind = "plagiarism"
	FindingAI         FindingKind = "ai"
	FindingSuspect    FindingKind = "suspect"
)

// CheckStatus is the outcome of a check run.
type CheckStatus string

// Check statuses.
const (
	// StatusComplete means every window was analysed.
	StatusComplete CheckStatus = "complete"

	// StatusSectionNotFound means no start heading was found.
	StatusSectionNotFound CheckStatus = "section_not_found"

	// StatusNothingToAnalyze means the section was found but empty.
	StatusNothingToAnalyze CheckStatus = "nothing_to_analyze"
)

// Report is the result of checking one document.
type Report struct {
	// RunID identifies the check run.
	RunID string

	// Document is the checked document.
	Document Document

	// Section is the located section; zero when not found.
	Section Section

	// Status is the outcome of the run.
	Status CheckStatus

	// Windows is the number of windows analysed.
	Windows int

	// Findings are the flagged windows in sequence order.
	Findings []Finding

	// Files are the paths of the written report files; empty when the run
	// produced no findings.
	Files []string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Count returns the number of findings of the given kind.
func (r *Report) Count(kind FindingKind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind() == kind {
			n++
		}
	}
	return n
}
