package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAIScore asks for an AI-authorship score.
	// The template expects a %s placeholder for the text.
	PromptAIScore = "ai_score"

	// PromptSearchQueries asks for web search queries that would find the text's sources.
	// The template expects a %s placeholder for the text.
	PromptSearchQueries = "search_queries"

	// PromptAdjudicate asks for a verdict on a window and its most similar source.
	// The template expects %s (window), %s (source URL), %s (source text) and
	// %.1f (AI score) placeholders, in that order.
	PromptAdjudicate = "adjudicate"
)
