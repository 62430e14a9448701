package mindwell

import (
	"context"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// SourceType tags a document with its provenance.
type SourceType string

const (
	SourcePDF     SourceType = SourceType(domain.SourcePDF)
	SourceWeb     SourceType = SourceType(domain.SourceWeb)
	SourceDataset SourceType = SourceType(domain.SourceDataset)
)

// Document is a unit of content to ingest.
type Document struct {
	Text   string
	Source string
	Type   SourceType
	Title  string
}

// Match is a retrieval result, ranked descending by score.
type Match struct {
	Text   string
	Source string
	Score  float64
}

// IngestStats summarises one ingestion run.
type IngestStats struct {
	Documents int
	Chunks    int
	Vectors   int
}

// Answer is one grounded chat turn.
type Answer struct {
	Response string
	Persona  string
	Sources  []string
}

// Embedder produces embedding vectors for text. Implementations must
// return one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

func documentsToDomain(docs []Document) []domain.Document {
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Document{
			Text: d.Text,
			Metadata: domain.Metadata{
				Source: d.Source,
				Type:   domain.SourceType(d.Type),
				Title:  d.Title,
			},
		})
	}
	return out
}

func matchesFromDomain(matches []domain.Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{
			Text:   m.Text,
			Source: m.Source,
			Score:  m.Score,
		})
	}
	return out
}
