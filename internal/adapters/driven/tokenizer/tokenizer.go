// Package tokenizer selects a Tokenizer implementation by name.
package tokenizer

import (
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/tokenizer/simple"
	"github.com/h24486064/plagiarism-detection/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// New returns the tokenizer for name. "simple" selects the built-in
// tokenizer; anything else is treated as a tiktoken encoding. When the
// encoding cannot be loaded the simple tokenizer is returned instead.
func New(name string) driven.Tokenizer {
	if name == simple.Name {
		return simple.New()
	}

	tok, err := tiktoken.New(name)
	if err != nil {
		logger.Warn("Tokenizer %q unavailable, using simple tokenizer: %v", name, err)
		return simple.New()
	}
	return tok
}
