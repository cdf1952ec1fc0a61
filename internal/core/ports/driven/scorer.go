package driven

// AIScorer estimates how likely a text is machine-generated without calling a model.
type AIScorer interface {
	// Score returns the AI-authorship likelihood in [0, 100].
	Score(text string) float64
}
