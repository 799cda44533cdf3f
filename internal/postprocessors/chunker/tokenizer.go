package chunker

import "github.com/custodia-labs/docqa-cli/internal/core/ports/driven"

// Ensure RuneTokenizer implements the interface.
var _ driven.Tokenizer = RuneTokenizer{}

// RuneTokenizer treats every Unicode code point as one token. It is used
// when no BPE vocabulary is available and keeps chunk sizes predictable in
// tests.
type RuneTokenizer struct{}

// Encode returns the code points of text.
func (RuneTokenizer) Encode(text string) []int {
	runes := []rune(text)
	tokens := make([]int, len(runes))
	for i, r := range runes {
		tokens[i] = int(r)
	}
	return tokens
}

// Decode returns the text of the code points.
func (RuneTokenizer) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, t := range tokens {
		runes[i] = rune(t)
	}
	return string(runes)
}
