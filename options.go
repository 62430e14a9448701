package mindwell

import "go.uber.org/zap"

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultDimensions     = 384
	defaultCollection     = "therapy-knowledge"
)

type clientConfig struct {
	addrs    []string
	password string

	openaiKey      string
	openaiBaseURL  string
	embeddingModel string
	dimensions     int
	embedder       Embedder

	collection      string
	hnswM           int
	hnswEFConstruct int
	batchSize       int

	chunkSize    int
	chunkOverlap int

	geminiKey string
	chatModel string
	topK      int

	logger *zap.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// WithRedis adds a Redis node address. Password may be empty.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = append(c.addrs, addr)
		c.password = password
	}
}

// WithOpenAI configures the OpenAI embedding provider.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.openaiKey = apiKey
	}
}

// WithEmbeddingModel overrides the embedding model and vector dimensions.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		if model != "" {
			c.embeddingModel = model
		}
		if dimensions > 0 {
			c.dimensions = dimensions
		}
	}
}

// WithEmbeddingBaseURL points the embedding client at an
// OpenAI-compatible endpoint.
func WithEmbeddingBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.openaiBaseURL = url
	}
}

// WithEmbedder supplies a custom embedding provider instead of OpenAI.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithCollection overrides the vector collection name.
func WithCollection(name string) Option {
	return func(c *clientConfig) {
		c.collection = name
	}
}

// WithHNSW tunes HNSW graph construction parameters.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithBatchSize sets the embedding and upsert batch size.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) {
		c.batchSize = n
	}
}

// WithChunking overrides chunk size and overlap, measured in runes.
func WithChunking(size, overlap int) Option {
	return func(c *clientConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	}
}

// WithGemini configures the Gemini chat generator. An empty model selects
// the default.
func WithGemini(apiKey, model string) Option {
	return func(c *clientConfig) {
		c.geminiKey = apiKey
		if model != "" {
			c.chatModel = model
		}
	}
}

// WithTopK sets how many passages ground each chat turn.
func WithTopK(k int) Option {
	return func(c *clientConfig) {
		c.topK = k
	}
}

// WithLogger attaches a zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
