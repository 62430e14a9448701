package chat

import (
	"context"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// Retriever fetches knowledge-base passages relevant to a query.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]domain.Match, error)
}

// Generator produces a model reply for a conversation turn.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}
