package driving

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// AskService answers questions from the user's documents.
type AskService interface {
	// Prepare gathers, ranks and packs documents into a prompt.
	// Returns domain.ErrBudgetExceeded before any network call if the
	// question alone does not fit the context budget.
	Prepare(ctx context.Context, question string, opts domain.AskOptions) (*domain.PreparedAnswer, error)

	// Stream sends a prepared prompt to the completion service. The channel
	// yields the growing answer and is closed after the final update.
	Stream(ctx context.Context, prepared *domain.PreparedAnswer) (<-chan domain.AnswerUpdate, error)

	// Ask prepares and streams in one call, returning the finished answer.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error)
}
