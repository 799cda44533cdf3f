// Package tokenizer provides the BPE tokenizer used to size chunks.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/postprocessors/chunker"
)

// DefaultEncoding matches the tokenizer of OpenAI and Gemini-compatible models.
const DefaultEncoding = "cl100k_base"

// Ensure Tiktoken implements the interface.
var _ driven.Tokenizer = (*Tiktoken)(nil)

// Tiktoken adapts a tiktoken encoding to the Tokenizer port.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding. Loading may download the BPE ranks
// on first use.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Encode returns the BPE tokens of text. Special tokens are treated as text.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode returns the text of tokens.
func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Load returns the named BPE tokenizer, or the rune tokenizer when the
// encoding cannot be loaded (for example when offline).
func Load(encoding string) driven.Tokenizer {
	tok, err := NewTiktoken(encoding)
	if err != nil {
		logger.Warn("tokenizer: %v; falling back to one token per character", err)
		return chunker.RuneTokenizer{}
	}
	return tok
}
