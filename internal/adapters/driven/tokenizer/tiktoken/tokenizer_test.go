package tiktoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer_Count(t *testing.T) {
	tok, err := New("")
	if err != nil {
		t.Skipf("encoding unavailable (offline?): %v", err)
	}

	assert.Equal(t, DefaultEncoding, tok.Name())
	assert.Equal(t, 0, tok.Count(""))
	assert.Equal(t, 2, tok.Count("hello world"))
	assert.Positive(t, tok.Count("文獻探討"))
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New("no_such_encoding")
	require.Error(t, err)
}
