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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/config"
	"github.com/veldt-labs/modex/internal/corpus"
	dbRedis "github.com/veldt-labs/modex/internal/db/redis"
	"github.com/veldt-labs/modex/internal/domain"
	logpkg "github.com/veldt-labs/modex/internal/logger"
	"github.com/veldt-labs/modex/internal/metrics"
	"github.com/veldt-labs/modex/internal/repository/embcache"
	examplesrepo "github.com/veldt-labs/modex/internal/repository/examples"
	chiTransport "github.com/veldt-labs/modex/internal/transport/chi"
	"github.com/veldt-labs/modex/internal/transport/openai"
	classifyuc "github.com/veldt-labs/modex/internal/usecase/classify"
	healthuc "github.com/veldt-labs/modex/internal/usecase/health"
	indexeruc "github.com/veldt-labs/modex/internal/usecase/indexer"
	retrieveuc "github.com/veldt-labs/modex/internal/usecase/retrieve"
	scrapeuc "github.com/veldt-labs/modex/internal/usecase/scrape"
	"github.com/veldt-labs/modex/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting modex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("retrieval_mode", cfg.Retrieval.Mode),
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

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	classifier := openai.NewClassifier(&openai.ClassifierConfig{
		APIKey:     cfg.Classifier.APIKey,
		BaseURL:    cfg.Classifier.BaseURL,
		Model:      cfg.Classifier.Model,
		Timeout:    time.Duration(cfg.Classifier.TimeoutSec) * time.Second,
		MaxRetries: cfg.Classifier.MaxRetries,
		Logger:     logger,
	})

	exRepo := examplesrepo.New(store, cfg.Corpus.Collection, cfg.Embedding.Dimensions,
		examplesrepo.HNSWConfig{
			M:           cfg.Embedding.HNSWM,
			EFConstruct: cfg.Embedding.HNSWEFConstruct,
		})
	source := corpusSource{path: cfg.Corpus.Path}

	indexer := indexeruc.New(exRepo, embedder, source, logger)

	// Blocking startup barrier: no classification before the index is built.
	syncCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	if err := indexer.Sync(syncCtx); err != nil {
		cancel()
		logger.Fatal("Failed to sync example index", zap.Error(err))
	}
	cancel()
	logger.Info("Example index ready", zap.String("collection", cfg.Corpus.Collection))

	retriever := retrieveuc.New(exRepo, embedder, source, retrieveuc.Config{
		Mode:        cfg.Retrieval.Mode,
		TopK:        cfg.Retrieval.TopK,
		FuzzyCutoff: cfg.Retrieval.FuzzyCutoff,
	}, logger)

	classifySvc := classifyuc.New(retriever, classifier, logger)
	scrapeSvc := scrapeuc.New(classifySvc, logger)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), indexer)

	server := chiTransport.NewServer(classifySvc, scrapeSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(nil))
	r.Use(metrics.Middleware())
	server.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// corpusSource adapts the corpus loader to the usecase Source contracts.
type corpusSource struct {
	path string
}

func (s corpusSource) Load() ([]domain.Example, error) {
	return corpus.Load(s.path)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> DimChecked -> Cached.
// The cache sits outermost so a hit skips the dimension check too; the cache
// key carries model and dimensions, so a hit is always a vector that passed
// the check under the current configuration.
func buildEmbedder(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openai.NewEmbedder(&openai.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	checked := domain.NewDimCheckedEmbedder(base, cfg.Embedding.Dimensions)

	ttl := time.Duration(cfg.Embedding.CacheTTLHours) * time.Hour
	return embcache.New(checked, store, cfg.Embedding.Model, cfg.Embedding.Dimensions,
		ttl, metrics.EmbeddingCacheTotal, logger)
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

			// chi.middleware.RequestID already placed request_id in context
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
