package domain

// SourceType tags a document with its provenance.
type SourceType string

const (
	// SourcePDF marks documents extracted from PDF files.
	SourcePDF SourceType = "pdf"
	// SourceWeb marks documents scraped from web pages.
	SourceWeb SourceType = "web"
	// SourceDataset marks documents loaded from dataset snapshots.
	SourceDataset SourceType = "dataset"
)

// Metadata carries provenance through chunking into the index.
type Metadata struct {
	Source string
	Type   SourceType
	Title  string
}

// Document is a unit of ingested content before chunking.
type Document struct {
	Text     string
	Metadata Metadata
}

// Chunk is a bounded fragment of a document, the atomic unit that gets
// embedded and indexed. Position is the chunk's index within its parent
// document and feeds the deterministic vector id.
type Chunk struct {
	Text     string
	Position int
	Metadata Metadata
}
