package driving

import (
	"context"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// AnswerService answers safety questions from the indexed corpus.
type AnswerService interface {
	// Answer returns the final answer text for a question.
	// Errors are typed: see domain.ErrEmbeddingCall, domain.ErrGenerationCall
	// and domain.ErrRetrievalInconsistency.
	Answer(ctx context.Context, question string) (string, error)

	// Ask is Answer with the full structured result.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Retrieve returns the top-k chunks for a question without composing.
	Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error)

	// Manifest describes the corpus currently being served.
	Manifest() domain.Manifest
}
