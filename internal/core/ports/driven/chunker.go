package driven

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// Chunker splits canonical text into ordered, non-empty segments.
type Chunker interface {
	// Chunk returns the segments in document order.
	Chunk(text string) []string

	// Process chunks text and assigns dense ordinals in [0, N) for documentID.
	Process(documentID, text string) []domain.Chunk
}

// Tokenizer converts between text and token IDs.
type Tokenizer interface {
	// Encode returns the tokens of text.
	Encode(text string) []int

	// Decode returns the text of tokens.
	Decode(tokens []int) string
}
