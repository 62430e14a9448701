package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/chunker"
	"github.com/mindwell-ai/mindwell/internal/config"
	"github.com/mindwell-ai/mindwell/internal/db"
	dbRedis "github.com/mindwell-ai/mindwell/internal/db/redis"
	"github.com/mindwell-ai/mindwell/internal/domain"
	"github.com/mindwell-ai/mindwell/internal/feedback"
	logpkg "github.com/mindwell-ai/mindwell/internal/logger"
	"github.com/mindwell-ai/mindwell/internal/metrics"
	"github.com/mindwell-ai/mindwell/internal/repository/embcache"
	indexrepo "github.com/mindwell-ai/mindwell/internal/repository/index"
	"github.com/mindwell-ai/mindwell/internal/transport/gemini"
	"github.com/mindwell-ai/mindwell/internal/transport/httpapi"
	openaiEmb "github.com/mindwell-ai/mindwell/internal/transport/openai"
	"github.com/mindwell-ai/mindwell/internal/usecase/chat"
	healthuc "github.com/mindwell-ai/mindwell/internal/usecase/health"
	"github.com/mindwell-ai/mindwell/internal/usecase/rag"
	"github.com/mindwell-ai/mindwell/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mindwell API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

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
	ragSvc := rag.New(splitter, embedder, indexClient, logger)

	generator, err := gemini.New(ctx, cfg.Chat.GeminiAPIKey, cfg.Chat.Model, logger)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}

	chatSvc := chat.New(ragSvc, generator, logger).WithTopK(cfg.Chat.TopK)

	feedbackStore, err := feedback.NewStore(cfg.Feedback.Path)
	if err != nil {
		logger.Fatal("Failed to open feedback store", zap.Error(err))
	}
	defer feedbackStore.Close()

	healthSvc := healthuc.New().
		WithCheck("database", healthuc.CheckerFunc(store.Ping)).
		WithCheck("embedding", embeddingHealthChecker(embedder))

	server := httpapi.NewServer(chatSvc, feedbackStore, healthSvc, logger).
		WithCORSOrigins(cfg.HTTP.CORSOrigins)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	if !cfg.Embedding.Cache {
		return base
	}
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
}

// embeddingHealthChecker adapts the optional HealthChecker side of an
// embedder to the health service.
func embeddingHealthChecker(e domain.Embedder) healthuc.Checker {
	hc, ok := e.(domain.HealthChecker)
	if !ok {
		return nil
	}
	return healthuc.CheckerFunc(func(ctx context.Context) error {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
		return nil
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
