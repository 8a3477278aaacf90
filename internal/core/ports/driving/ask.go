package driving

import (
	"context"

	"github.com/custodia-labs/aska-cli/internal/core/domain"
)

// AskService answers questions grounded in the indexed corpora.
type AskService interface {
	// Ask embeds the question, retrieves and reranks candidates
	// across the enabled corpora, and generates a grounded answer
	// from the top hit. A question that matches nothing yields an
	// ungrounded "no relevant documents" answer, not an error. A
	// provider failure while embedding the question is returned as
	// an error for the surface to show; the session stays alive.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Stats reports the indexed state of every enabled corpus.
	Stats(ctx context.Context) ([]domain.CorpusStats, error)
}
