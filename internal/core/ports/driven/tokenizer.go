package driven

// Tokenizer counts language-model tokens.
// Window sizes are measured in tokens because downstream models have token budgets.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the encoding (e.g., "cl100k_base").
	Name() string
}
