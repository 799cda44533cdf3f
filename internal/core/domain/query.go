package domain

// Query is one question of a batch. It lives only as long as the batch.
type Query struct {
	// Index is the position of the question in the input batch.
	Index int

	// Text is the raw question.
	Text string

	// Embedding is the resolved question vector.
	Embedding []float32

	// Retrieved holds the top-k chunks, best first.
	Retrieved []ScoredChunk
}

// Answer is the outcome of one Query.
type Answer struct {
	// Question is the raw question text.
	Question string

	// Text is the answer, or the per-question error message when Err is set.
	Text string

	// Sources lists the ordinals of the chunks used as context.
	Sources []int

	// Err is the per-question failure, if any.
	Err error
}

// Failed returns true if the question could not be answered.
func (a Answer) Failed() bool {
	return a.Err != nil
}
