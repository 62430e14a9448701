// Package index owns the lifecycle of the remote vector collection:
// idempotent creation, batched upsert, top-k similarity query, and full wipe.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/db"
	"github.com/mindwell-ai/mindwell/internal/domain"
)

// DefaultBatchSize bounds upsert batches to respect backend payload limits.
const DefaultBatchSize = 100

// store is the consumer interface for the vector collection (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Config holds collection parameters. Dimension is fixed at creation time;
// every upserted vector must match it exactly.
type Config struct {
	Collection string
	Dimension  int
	BatchSize  int
	HNSW       HNSWConfig
}

// Client implements the index capability: ensure / upsert / query / clear.
type Client struct {
	store     store
	name      string
	dim       int
	batchSize int
	hnsw      HNSWConfig
	logger    *zap.Logger
}

// New creates an index client.
func New(s store, cfg Config, logger *zap.Logger) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.HNSW.M <= 0 {
		cfg.HNSW.M = 16
	}
	if cfg.HNSW.EFConstruct <= 0 {
		cfg.HNSW.EFConstruct = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		store:     s,
		name:      cfg.Collection,
		dim:       cfg.Dimension,
		batchSize: cfg.BatchSize,
		hnsw:      cfg.HNSW,
		logger:    logger,
	}
}

// BatchError reports a failed upsert batch. Earlier batches stay committed;
// callers retrying must rely on content-derived ids for idempotence.
type BatchError struct {
	Batch int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("upsert batch %d: %v", e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// EnsureCollection checks the collection by name and creates it with the
// configured dimension and cosine metric if absent. Calling it again with
// identical parameters is a no-op; an existing collection with a different
// dimension is a fatal ErrDimensionConflict.
func (c *Client) EnsureCollection(ctx context.Context) error {
	exists, err := c.store.IndexExists(ctx, c.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}

	if exists {
		return c.verifyDimension(ctx)
	}

	def := &db.IndexDefinition{
		Name:     c.indexName(),
		Prefixes: []string{c.recordPrefix()},
		Fields: []db.IndexField{
			{Name: "source", Type: db.IndexFieldTag},
			{Name: "type", Type: db.IndexFieldTag},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         c.dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           c.hnsw.M,
				VectorEFConstruct: c.hnsw.EFConstruct,
			},
		},
	}

	if err := c.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			// Lost a creation race; the winner's dimension still has to match.
			return c.verifyDimension(ctx)
		}
		return fmt.Errorf("create index %s: %w", c.indexName(), err)
	}

	meta := map[string]string{
		"dimension": strconv.Itoa(c.dim),
		"metric":    string(db.DistanceCosine),
	}
	if err := c.store.HSet(ctx, c.metaKey(), meta); err != nil {
		return fmt.Errorf("write collection meta: %w", err)
	}

	c.logger.Info("collection created",
		zap.String("collection", c.name),
		zap.Int("dimension", c.dim),
	)
	return nil
}

// verifyDimension compares the configured dimension against the one recorded
// at creation. A missing meta hash is tolerated (pre-existing index from an
// older deployment); a recorded mismatch is fatal.
func (c *Client) verifyDimension(ctx context.Context) error {
	meta, err := c.store.HGetAll(ctx, c.metaKey())
	if err != nil {
		return fmt.Errorf("read collection meta: %w", err)
	}
	recorded, ok := meta["dimension"]
	if !ok {
		return nil
	}
	dim, err := strconv.Atoi(recorded)
	if err != nil {
		return fmt.Errorf("corrupt collection meta %q: %w", recorded, err)
	}
	if dim != c.dim {
		return fmt.Errorf(
			"collection %s has dimension %d, configured %d: %w",
			c.name, dim, c.dim, domain.ErrDimensionConflict,
		)
	}
	return nil
}

// Upsert writes records in bounded batches, overwriting by id. All vectors
// are dimension-checked before the first write; a mismatch aborts the whole
// call. A failing batch is surfaced with its index, leaving earlier batches
// committed.
func (c *Client) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	for i := range records {
		if len(records[i].Values) != c.dim {
			return fmt.Errorf(
				"record %s: got %d values, want %d: %w",
				records[i].ID, len(records[i].Values), c.dim, domain.ErrVectorDimMismatch,
			)
		}
	}

	for batch := 0; batch*c.batchSize < len(records); batch++ {
		start := batch * c.batchSize
		end := min(start+c.batchSize, len(records))

		items := make([]db.HashSetItem, 0, end-start)
		for _, rec := range records[start:end] {
			items = append(items, db.HashSetItem{
				Key:    c.recordKey(rec.ID),
				Fields: recordToHash(rec),
			})
		}

		if err := c.store.HSetMulti(ctx, items); err != nil {
			return &BatchError{Batch: batch, Err: err}
		}

		c.logger.Debug("batch upserted",
			zap.String("collection", c.name),
			zap.Int("batch", batch),
			zap.Int("records", end-start),
		)
	}

	return nil
}

// Query returns up to topK nearest records by cosine similarity, ordered
// descending by score.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	if len(vector) != c.dim {
		return nil, fmt.Errorf(
			"query vector has %d values, want %d: %w",
			len(vector), c.dim, domain.ErrVectorDimMismatch,
		)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive: %w", domain.ErrInvalidRequest)
	}

	res, err := c.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    c.indexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"text", "source", "type", "title"},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("collection %s: %w", c.name, domain.ErrCollectionNotFound)
		}
		return nil, fmt.Errorf("knn search: %w", err)
	}

	matches := make([]domain.Match, 0, len(res.Entries))
	for _, entry := range res.Entries {
		matches = append(matches, domain.Match{
			Text:   entry.Fields["text"],
			Source: entry.Fields["source"],
			Score:  entry.Score,
		})
	}
	return matches, nil
}

// Clear deletes every record and drops the index. A collection that was
// never created (or is already empty) is an idempotent no-op; any other
// failure propagates.
func (c *Client) Clear(ctx context.Context) error {
	keys, err := c.store.Scan(ctx, c.recordPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan records: %w", err)
	}

	for start := 0; start < len(keys); start += c.batchSize {
		end := min(start+c.batchSize, len(keys))
		if err := c.store.Del(ctx, keys[start:end]...); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
	}

	if err := c.store.DropIndex(ctx, c.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", c.indexName(), err)
	}

	if err := c.store.Del(ctx, c.metaKey()); err != nil {
		return fmt.Errorf("delete collection meta: %w", err)
	}

	c.logger.Info("collection cleared",
		zap.String("collection", c.name),
		zap.Int("records", len(keys)),
	)
	return nil
}

func recordToHash(rec domain.VectorRecord) map[string]string {
	fields := map[string]string{
		"vector": db.VectorToBytes(rec.Values),
		"text":   rec.Text,
		"source": rec.Metadata.Source,
		"type":   string(rec.Metadata.Type),
	}
	if rec.Metadata.Title != "" {
		fields["title"] = rec.Metadata.Title
	}
	return fields
}

func (c *Client) indexName() string {
	return "rag:" + c.name + ":idx"
}

func (c *Client) metaKey() string {
	return "rag:" + c.name + ":meta"
}

func (c *Client) recordPrefix() string {
	return "rag:" + c.name + ":chunk:"
}

func (c *Client) recordKey(id string) string {
	return c.recordPrefix() + id
}
