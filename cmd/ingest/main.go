// Command ingest loads knowledge-base sources into the vector index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/chunker"
	"github.com/mindwell-ai/mindwell/internal/config"
	dbRedis "github.com/mindwell-ai/mindwell/internal/db/redis"
	logpkg "github.com/mindwell-ai/mindwell/internal/logger"
	"github.com/mindwell-ai/mindwell/internal/metrics"
	indexrepo "github.com/mindwell-ai/mindwell/internal/repository/index"
	"github.com/mindwell-ai/mindwell/internal/source"
	openaiEmb "github.com/mindwell-ai/mindwell/internal/transport/openai"
	"github.com/mindwell-ai/mindwell/internal/usecase/rag"
	"github.com/mindwell-ai/mindwell/internal/version"
)

var clearFirst bool

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load knowledge sources into the vector index",
	Long: `Ingests therapy knowledge sources (PDF worksheets, self-help sites,
dialogue datasets) into the vector index used for retrieval.`,
	SilenceUsage: true,
	Version:      version.String(),
}

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "Ingest the configured PDF directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(env *ingestEnv) rag.Source {
			return source.NewPDFSource(env.cfg.Sources.PDFDir, env.logger)
		})
	},
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Crawl and ingest the configured self-help sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(env *ingestEnv) rag.Source {
			return source.NewWebSource(env.cfg.Sources.WebHubs, env.logger)
		})
	},
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Ingest the configured dataset snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(env *ingestEnv) rag.Source {
			return source.NewDatasetSource(env.cfg.Sources.Datasets, env.logger)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&clearFirst, "clear", false,
		"wipe the collection before ingesting")
	rootCmd.AddCommand(pdfsCmd, webCmd, datasetsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ingestEnv bundles the wiring shared by all subcommands.
type ingestEnv struct {
	cfg    config.Config
	logger *zap.Logger
	rag    *rag.Service
	close  func()
}

func runIngest(cmd *cobra.Command, buildSource func(*ingestEnv) rag.Source) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := buildSource(env)
	cmd.Printf("Ingesting %s source...\n", src.Type())

	stats, err := env.rag.IngestSource(ctx, src, clearFirst)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", src.Type(), err)
	}

	cmd.Printf("Done: %d documents, %d chunks, %d vectors upserted.\n",
		stats.Documents, stats.Chunks, stats.Vectors)
	return nil
}

func setup() (*ingestEnv, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(context.Background(),
		time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	indexClient := indexrepo.New(store, indexrepo.Config{
		Collection: cfg.Index.Collection,
		Dimension:  cfg.Embedding.Dimensions,
		BatchSize:  cfg.Index.UpsertBatchSize,
		HNSW: indexrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
	}, logger)

	splitter := chunker.New(chunker.Config{})
	ragSvc := rag.New(splitter, embedder, indexClient, logger).
		WithBatchSize(cfg.Embedding.BatchSize)

	return &ingestEnv{
		cfg:    cfg,
		logger: logger,
		rag:    ragSvc,
		close: func() {
			_ = logger.Sync()
			store.Close()
		},
	}, nil
}
