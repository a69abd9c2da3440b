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

	"github.com/kailas-cloud/kbsearch/internal/config"
	dbRedis "github.com/kailas-cloud/kbsearch/internal/db/redis"
	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/domain/question"
	logpkg "github.com/kailas-cloud/kbsearch/internal/logger"
	"github.com/kailas-cloud/kbsearch/internal/metrics"
	kbrepo "github.com/kailas-cloud/kbsearch/internal/repository/kb"
	termindexrepo "github.com/kailas-cloud/kbsearch/internal/repository/termindex"
	txnrepo "github.com/kailas-cloud/kbsearch/internal/repository/transaction"
	chiTransport "github.com/kailas-cloud/kbsearch/internal/transport/chi"
	"github.com/kailas-cloud/kbsearch/internal/transport/credgate"
	healthuc "github.com/kailas-cloud/kbsearch/internal/usecase/health"
	solveuc "github.com/kailas-cloud/kbsearch/internal/usecase/solve"
	translateuc "github.com/kailas-cloud/kbsearch/internal/usecase/translate"
	"github.com/kailas-cloud/kbsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting kbsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
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

	// Register domain metrics explicitly (no init())
	metrics.RegisterTranslationMetrics()

	index, err := termindexrepo.Load(cfg.Index.SnapshotPath)
	if err != nil {
		logger.Fatal("Failed to load term index snapshot",
			zap.String("path", cfg.Index.SnapshotPath),
			zap.Error(err),
		)
	}
	logger.Info("Term index loaded",
		zap.String("path", cfg.Index.SnapshotPath),
		zap.Int("terms", index.Terms()),
	)

	normalizer := question.NewNormalizer(cfg.Index.DocTypes, cfg.Index.TrimCutset)
	translator := translateuc.New(index)

	txnStore := txnrepo.New(store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Search.TransactionTTLSec)*time.Second)
	executor := kbrepo.New(store, cfg.Index.KBIndexName, cfg.Search.TopK)

	solver := solveuc.New(normalizer, translator, txnStore, executor,
		solveuc.WithFailFast(cfg.Search.FailFast))

	gate := credgate.New(cfg.Auth.Scheme,
		time.Duration(cfg.Auth.TimeoutSec)*time.Second,
		cfg.Auth.APIPolicies, cfg.Auth.RequiredCreds)

	userPolicy := policy.New(cfg.Auth.UserPolicy.Categories, cfg.Auth.UserPolicy.Attributes)

	healthSvc := healthuc.New(store, index)

	server := chiTransport.NewServer(solver, gate, healthSvc, userPolicy, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	// Recoverer sits inside the wide-event middleware so a panicking
	// request still emits its canonical log line.
	r.Use(jsonRecoverer(logger))
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

			// Per-request logger with request_id
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
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
