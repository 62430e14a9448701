// Package rag composes chunking, embedding, and the vector index into the
// ingestion and retrieval flows.
package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/domain"
	"github.com/mindwell-ai/mindwell/internal/metrics"
)

// DefaultBatchSize bounds how many chunks are embedded and upserted per
// round-trip.
const DefaultBatchSize = 100

// DefaultTopK is the number of matches returned when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// Service is the retrieval orchestrator. It is stateless beyond its injected
// collaborators and safe for concurrent queries.
type Service struct {
	chunker   Chunker
	embedder  domain.Embedder
	index     Index
	batchSize int
	logger    *zap.Logger
}

// New creates the orchestrator.
func New(chunker Chunker, embedder domain.Embedder, index Index, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// WithBatchSize overrides the embed/upsert batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// IngestStats reports what one ingestion run processed.
type IngestStats struct {
	Documents int
	Chunks    int
	Vectors   int
}

// Ingest chunks the documents, embeds the chunks in batches, and upserts the
// resulting records. Vector ids derive from chunk content and position, so
// ingesting the same documents again overwrites instead of duplicating.
// A failed batch aborts the run from that batch on; earlier batches stay
// committed (at-least-once, safe to retry thanks to the stable ids).
func (s *Service) Ingest(ctx context.Context, docs []domain.Document, clearFirst bool) (IngestStats, error) {
	if clearFirst {
		if err := s.index.Clear(ctx); err != nil {
			return IngestStats{}, fmt.Errorf("clear collection: %w", err)
		}
	}

	if err := s.index.EnsureCollection(ctx); err != nil {
		return IngestStats{}, fmt.Errorf("ensure collection: %w", err)
	}

	chunks := s.chunkAll(docs)
	stats := IngestStats{Documents: len(docs), Chunks: len(chunks)}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		records, err := s.embedChunks(ctx, batch)
		if err != nil {
			return stats, fmt.Errorf("embed batch at chunk %d: %w", start, err)
		}

		if err := s.index.Upsert(ctx, records); err != nil {
			return stats, fmt.Errorf("upsert batch at chunk %d: %w", start, err)
		}

		stats.Vectors += len(records)
		metrics.IngestVectorsTotal.Add(float64(len(records)))
	}

	s.logger.Info("ingestion complete",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Int("vectors", stats.Vectors),
	)
	return stats, nil
}

// IngestSource drives one source adapter end to end.
func (s *Service) IngestSource(ctx context.Context, src Source, clearFirst bool) (IngestStats, error) {
	docs, err := src.Fetch(ctx)
	if err != nil {
		return IngestStats{}, fmt.Errorf("fetch %s source: %w", src.Type(), err)
	}

	metrics.IngestDocumentsTotal.WithLabelValues(string(src.Type())).Add(float64(len(docs)))

	stats, err := s.Ingest(ctx, docs, clearFirst)
	if err != nil {
		return stats, err
	}
	metrics.IngestChunksTotal.WithLabelValues(string(src.Type())).Add(float64(stats.Chunks))
	return stats, nil
}

// Query embeds the question and returns up to topK matches in the backend's
// descending-score order. An empty result is a valid "no relevant context"
// outcome, not an error.
func (s *Service) Query(ctx context.Context, text string, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	result, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, result.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return matches, nil
}

func (s *Service) chunkAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		pieces := s.chunker.Split(doc.Text)
		for i, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				Text:     piece,
				Position: i,
				Metadata: doc.Metadata,
			})
		}
	}
	return chunks
}

func (s *Service) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.VectorRecord, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedded, err := domain.EmbedTexts(ctx, s.embedder, texts)
	if err != nil {
		return nil, err
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ID:       domain.RecordID(c),
			Values:   embedded.Embeddings[i],
			Text:     c.Text,
			Metadata: c.Metadata,
		}
	}
	return records, nil
}
