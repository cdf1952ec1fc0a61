// Package tiktoken counts tokens with OpenAI's BPE encodings.
package tiktoken

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is the encoding used by GPT-4 class models.
const DefaultEncoding = "cl100k_base"

// Tokenizer wraps a tiktoken encoding.
type Tokenizer struct {
	enc  *tiktoken.Tiktoken
	name string
}

// New loads the named encoding. The BPE ranks are downloaded on first use and
// cached in TIKTOKEN_CACHE_DIR when it is set.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}

	return &Tokenizer{enc: enc, name: encoding}, nil
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}

// Count returns the number of tokens in text.
// Special-token text is encoded as ordinary text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
