// Package mindwell provides an embedded Go client for the mindwell
// retrieval pipeline: chunking, embedding, vector indexing and grounded
// chat, backed by Redis with the search module.
//
//	client, _ := mindwell.New(
//	    mindwell.WithRedis("localhost:6379", ""),
//	    mindwell.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    mindwell.WithGemini(os.Getenv("GEMINI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	client.Ingest(ctx, docs, false)
//	matches, _ := client.Query(ctx, "how do I handle panic attacks?", 5)
//	answer, _ := client.Chat(ctx, "I can't sleep lately", nil, "companion")
package mindwell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/chunker"
	dbRedis "github.com/mindwell-ai/mindwell/internal/db/redis"
	"github.com/mindwell-ai/mindwell/internal/domain"
	indexrepo "github.com/mindwell-ai/mindwell/internal/repository/index"
	"github.com/mindwell-ai/mindwell/internal/transport/gemini"
	"github.com/mindwell-ai/mindwell/internal/transport/openai"
	chatuc "github.com/mindwell-ai/mindwell/internal/usecase/chat"
	raguc "github.com/mindwell-ai/mindwell/internal/usecase/rag"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type ragUseCase interface {
	Ingest(ctx context.Context, docs []domain.Document, clearFirst bool) (raguc.IngestStats, error)
	Query(ctx context.Context, text string, topK int) ([]domain.Match, error)
}

type chatUseCase interface {
	Chat(ctx context.Context, message string, history []string, persona string) (chatuc.Answer, error)
}

type indexClient interface {
	Clear(ctx context.Context) error
}

// Client is the mindwell SDK entry point.
type Client struct {
	store   *dbRedis.Store
	ragSvc  ragUseCase
	chatSvc chatUseCase
	index   indexClient
}

// New creates a mindwell Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingModel: defaultEmbeddingModel,
		dimensions:     defaultDimensions,
		chatModel:      gemini.DefaultModel,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("mindwell: database address required (use WithRedis)")
	}
	if cfg.embedder == nil && cfg.openaiKey == "" {
		return nil, errors.New("mindwell: embedder required (use WithOpenAI or WithEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("mindwell: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("mindwell: database not ready: %w", err)
	}

	return wireClient(ctx, store, cfg)
}

func wireClient(ctx context.Context, store *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var emb domain.Embedder
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder, dim: cfg.dimensions}
	} else {
		emb = openai.NewEmbedder(&openai.Config{
			APIKey:     cfg.openaiKey,
			BaseURL:    cfg.openaiBaseURL,
			Model:      cfg.embeddingModel,
			Dimensions: cfg.dimensions,
			Logger:     logger,
		})
	}

	collection := cfg.collection
	if collection == "" {
		collection = defaultCollection
	}
	index := indexrepo.New(store, indexrepo.Config{
		Collection: collection,
		Dimension:  cfg.dimensions,
		BatchSize:  cfg.batchSize,
		HNSW: indexrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		},
	}, logger)

	splitter := chunker.New(chunker.Config{
		Size:    cfg.chunkSize,
		Overlap: cfg.chunkOverlap,
	})

	ragSvc := raguc.New(splitter, emb, index, logger)
	if cfg.batchSize > 0 {
		ragSvc = ragSvc.WithBatchSize(cfg.batchSize)
	}

	// Generator: noop если не задан (ingest и query работают, chat вернёт ошибку)
	var gen chatuc.Generator = noopGenerator{}
	if cfg.geminiKey != "" {
		g, err := gemini.New(ctx, cfg.geminiKey, cfg.chatModel, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("mindwell: create generator: %w", err)
		}
		gen = g
	}

	chatSvc := chatuc.New(ragSvc, gen, logger)
	if cfg.topK > 0 {
		chatSvc = chatSvc.WithTopK(cfg.topK)
	}

	return &Client{
		store:   store,
		ragSvc:  ragSvc,
		chatSvc: chatSvc,
		index:   index,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest chunks, embeds and indexes the given documents. With clearFirst
// the collection is dropped and recreated before indexing.
func (c *Client) Ingest(ctx context.Context, docs []Document, clearFirst bool) (IngestStats, error) {
	stats, err := c.ragSvc.Ingest(ctx, documentsToDomain(docs), clearFirst)
	if err != nil {
		return IngestStats{}, err
	}
	return IngestStats(stats), nil
}

// Query embeds the text and returns the topK nearest passages.
func (c *Client) Query(ctx context.Context, text string, topK int) ([]Match, error) {
	matches, err := c.ragSvc.Query(ctx, text, topK)
	if err != nil {
		return nil, err
	}
	return matchesFromDomain(matches), nil
}

// Chat runs one grounded conversation turn. Requires WithGemini.
func (c *Client) Chat(ctx context.Context, message string, history []string, persona string) (Answer, error) {
	ans, err := c.chatSvc.Chat(ctx, message, history, persona)
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		Response: ans.Response,
		Persona:  ans.Persona.String(),
		Sources:  ans.Sources,
	}, nil
}

// ClearIndex drops all indexed vectors and the collection itself.
func (c *Client) ClearIndex(ctx context.Context) error {
	return c.index.Clear(ctx)
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
	dim   int
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vecs, err := a.inner.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

// noopGenerator returns an error on Generate call (used when no Gemini key
// is configured).
type noopGenerator struct{}

func (noopGenerator) Generate(_ context.Context, _ domain.GenerationRequest) (string, error) {
	return "", errors.New("mindwell: generator not configured (use WithGemini)")
}
