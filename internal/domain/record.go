package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// VectorRecord is the unit stored in the index: a unique id, the embedding
// vector, and the chunk text plus provenance metadata.
type VectorRecord struct {
	ID       string
	Values   []float32
	Text     string
	Metadata Metadata
}

// Match is a query-time retrieval result, ranked descending by score.
type Match struct {
	Text   string
	Source string
	Score  float64
}

// RecordID derives a stable vector id from a chunk's provenance and content.
// Re-ingesting identical content yields identical ids, so retries and re-runs
// overwrite instead of duplicating.
func RecordID(c Chunk) string {
	h := sha256.New()
	h.Write([]byte(c.Metadata.Source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(c.Position)))
	h.Write([]byte{0})
	h.Write([]byte(c.Text))
	return hex.EncodeToString(h.Sum(nil))
}
