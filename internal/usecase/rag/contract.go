package rag

import (
	"context"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// Chunker splits document text into size-bounded, overlapping segments.
type Chunker interface {
	Split(text string) []string
}

// Index is the remote vector collection capability.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, records []domain.VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error)
	Clear(ctx context.Context) error
}

// Source produces documents from one provenance (PDF directory, crawled
// site, dataset snapshot). Implementations skip per-item failures and may
// legitimately return an empty slice.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Document, error)
	Type() domain.SourceType
}
