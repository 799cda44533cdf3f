package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// AnswerService answers batches of questions against one document.
type AnswerService interface {
	// AnswerBatch returns exactly one answer per question, in input order.
	// Per-question failures are reported on the Answer, never as the
	// returned error; the error is reserved for invalid input.
	AnswerBatch(ctx context.Context, documentID string, questions []string) ([]domain.Answer, error)
}
