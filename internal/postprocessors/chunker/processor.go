// Package chunker splits canonical text into token-bounded, overlapping
// chunks cut at paragraph, sentence or word boundaries.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// DefaultMaxTokens is the default window size in tokens.
const DefaultMaxTokens = 1500

// DefaultOverlap is the default number of tokens repeated between windows.
const DefaultOverlap = 50

// boundaryRatio is the fraction of a window a boundary must lie past.
const boundaryRatio = 0.3

// sentenceEndings are the sentence terminators searched for a cut.
var sentenceEndings = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into chunks of at most maxTokens tokens.
type Processor struct {
	maxTokens int
	overlap   int
	tokenizer driven.Tokenizer
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the window size in tokens.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithOverlap sets the overlap between windows in tokens.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithTokenizer sets the tokenizer. Defaults to RuneTokenizer.
func WithTokenizer(t driven.Tokenizer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlap,
		tokenizer: RuneTokenizer{},
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave room for forward progress.
	if p.overlap >= p.maxTokens {
		p.overlap = p.maxTokens / 4
	}

	return p
}

// NewFromSettings creates a processor from chunking settings.
func NewFromSettings(s domain.ChunkingSettings, tokenizer driven.Tokenizer) *Processor {
	return New(WithMaxTokens(s.MaxTokens), WithOverlap(s.OverlapTokens), WithTokenizer(tokenizer))
}

// Chunk splits text into non-empty, trimmed segments in document order.
// Text that fits in one window is returned whole.
func (p *Processor) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := p.tokenizer.Encode(text)
	if len(tokens) <= p.maxTokens {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	start := 0

	for start < len(tokens) {
		end := min(start+p.maxTokens, len(tokens))
		window := p.tokenizer.Decode(tokens[start:end])
		consumed := end - start

		chunk := window
		if end < len(tokens) {
			if cut := findBoundary(window); cut < len(window) {
				chunk = window[:cut]
				consumed = p.consumedTokens(chunk, end-start)
			}
		}

		if chunk = strings.TrimSpace(chunk); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(tokens) {
			break
		}

		next := start + consumed - p.overlap
		if next <= start {
			next = start + consumed
		}
		start = next
	}

	return chunks
}

// Process chunks text into domain chunks with dense ordinals.
func (p *Processor) Process(documentID, text string) []domain.Chunk {
	segments := p.Chunk(text)
	chunks := make([]domain.Chunk, len(segments))
	for i, segment := range segments {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Ordinal:    i,
			Content:    segment,
		}
	}
	return chunks
}

// consumedTokens returns how many window tokens the trimmed prefix covers,
// clamped to [1, limit]. Re-encoding a prefix can differ by a token or two
// from the window slice at the cut, which only shifts the overlap slightly.
func (p *Processor) consumedTokens(prefix string, limit int) int {
	n := len(p.tokenizer.Encode(prefix))
	if n < 1 {
		return limit
	}
	return min(n, limit)
}

// findBoundary returns the byte offset to cut window at: the last
// paragraph break, else the furthest sentence end, else the last space.
// A boundary is only accepted past boundaryRatio of the window; otherwise
// the full length is returned.
func findBoundary(window string) int {
	threshold := int(float64(len(window)) * boundaryRatio)

	if i := strings.LastIndex(window, "\n\n"); i > threshold {
		return i
	}

	best := -1
	for _, ending := range sentenceEndings {
		if i := strings.LastIndex(window, ending); i > threshold && i+1 > best {
			best = i + 1
		}
	}
	if best > -1 {
		return best
	}

	if i := strings.LastIndex(window, " "); i > threshold {
		return i
	}

	return len(window)
}
