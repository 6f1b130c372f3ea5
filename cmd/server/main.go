package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tacklor/server/internal"
	"github.com/tacklor/server/internal/ai"
	"github.com/tacklor/server/internal/ai/mock"
	"github.com/tacklor/server/internal/ai/openaivision"
	"github.com/tacklor/server/internal/compliance"
	"github.com/tacklor/server/internal/handler"
	"github.com/tacklor/server/internal/i18n"
	"github.com/tacklor/server/internal/jobs"
	"github.com/tacklor/server/internal/metrics"
	"github.com/tacklor/server/internal/middleware"
	"github.com/tacklor/server/internal/repository"
	"github.com/tacklor/server/internal/service"
	"github.com/tacklor/server/internal/storage"
	"github.com/tacklor/server/internal/weather"
	"github.com/tacklor/server/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// leaderboardRefreshInterval is how often a refresh job is enqueued so the
// community ranking stays warm between requests.
const leaderboardRefreshInterval = 10 * time.Minute

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	queries := repository.New(db)

	// Initialize storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize compliance engine
	engine := compliance.NewEngine(compliance.DefaultRuleSet(), i18n.Default(), logger)
	logger.Info("Compliance engine ready", "rule_version", compliance.CurrentRuleVersion)

	// Initialize weather client
	weatherClient := weather.NewClient(weather.Config{
		BaseURL:        cfg.WeatherBaseURL,
		RequestTimeout: cfg.WeatherTimeout,
		CacheTTL:       cfg.WeatherCacheTTL,
	}, logger)

	// Initialize AI vision provider
	visionProvider, err := newVisionProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("vision provider initialization failed: %w", err)
	}
	logger.Info("Vision provider ready", "provider", cfg.AIProvider)

	// Initialize services
	catchService := service.NewCatchService(queries, engine, store, logger)
	photoService := service.NewPhotoService(queries, store, logger)
	profileService := service.NewProfileService(queries, logger)
	leaderboardService := service.NewLeaderboardService(queries, cfg.LeaderboardTTL, logger)

	// Initialize background worker
	workerCfg := worker.DefaultConfig()
	workerCfg.Concurrency = cfg.WorkerConcurrency
	workerCfg.PollInterval = cfg.WorkerPollInterval
	workerCfg.JobTimeout = cfg.WorkerJobTimeout

	w, err := worker.New(db, queries, workerCfg, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	w.Register(jobs.NewAnalyzeCatchPhotoHandler(queries, visionProvider, store, engine, cfg.AIMonthlyCostCapUSD, logger))
	w.Register(jobs.NewRefreshLeaderboardHandler(leaderboardService, logger))

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.WorkerEnabled {
		w.Start(workerCtx)
		go refreshLeaderboardLoop(workerCtx, queries, logger)
	}

	// Initialize middleware
	identityMw := middleware.NewIdentityMiddleware(logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	rateLimitMw := middleware.NewRateLimitMiddleware(rateLimiter, logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	catchHandler := handler.NewCatchHandler(catchService, photoService, weatherClient, logger)
	photoHandler := handler.NewPhotoHandler(photoService, catchHandler, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics (basic auth when credentials are configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Local storage files (development only; R2 serves via presigned URLs)
	if cfg.StorageProvider == storage.ProviderLocal {
		filesFS := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", filesFS))
	}

	// API routes: every request carries a validated identity from the
	// upstream gateway.
	requireUser := middleware.Stack(rateLimitMw.Limit, identityMw.RequireIdentity)
	catchHandler.RegisterRoutes(mux, requireUser)
	photoHandler.RegisterRoutes(mux, requireUser)
	profileHandler.RegisterRoutes(mux, requireUser)
	leaderboardHandler.RegisterRoutes(mux, requireUser)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: metrics.Middleware(loggingMw.Handler(mux)),
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if cfg.WorkerEnabled {
		stopWorker()
		w.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the configured storage backend.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

// newVisionProvider builds the configured AI vision provider.
func newVisionProvider(cfg *internal.Config, logger *slog.Logger) (ai.VisionProvider, error) {
	switch cfg.AIProvider {
	case "openai":
		return openaivision.New(openaivision.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			ProviderConfig: ai.ProviderConfig{
				MaxRetries:     cfg.AIMaxRetries,
				RetryBaseDelay: cfg.AIRetryBaseDelay,
				RequestTimeout: cfg.AIRequestTimeout,
			},
		}, logger)
	default:
		return mock.New(logger), nil
	}
}

// refreshLeaderboardLoop periodically enqueues a leaderboard refresh job.
func refreshLeaderboardLoop(ctx context.Context, queries *repository.Queries, logger *slog.Logger) {
	ticker := time.NewTicker(leaderboardRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := worker.EnqueueRefreshLeaderboard(ctx, queries); err != nil {
				logger.Warn("failed to enqueue leaderboard refresh", "error", err)
			}
		}
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
