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

	"github.com/elijahtye/Tonr/internal"
	"github.com/elijahtye/Tonr/internal/ai"
	"github.com/elijahtye/Tonr/internal/ai/anthropic"
	"github.com/elijahtye/Tonr/internal/ai/mock"
	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/billing"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/handler"
	"github.com/elijahtye/Tonr/internal/metrics"
	"github.com/elijahtye/Tonr/internal/middleware"
	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/elijahtye/Tonr/internal/service"
	"github.com/elijahtye/Tonr/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

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
	repo := repository.New(db)

	// Daily usage windows use a fixed location for every user
	location, err := time.LoadLocation(cfg.UsageTimezone)
	if err != nil {
		return fmt.Errorf("invalid USAGE_TIMEZONE %q: %w", cfg.UsageTimezone, err)
	}

	// Initialize the speech scorer
	scorer, err := newScorer(cfg, logger)
	if err != nil {
		return fmt.Errorf("scorer initialization failed: %w", err)
	}
	logger.Info("Scorer ready", "provider", cfg.AIProvider)

	// Initialize recording storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize billing (nil when Stripe is not configured; billing
	// handlers then respond with a configuration error and the webhook
	// acknowledges without acting)
	var billingService billing.Service
	prices := billing.PriceConfig{
		ProMonthlyPriceID: cfg.StripeProMonthlyPriceID,
		ProYearlyPriceID:  cfg.StripeProYearlyPriceID,
	}
	if cfg.StripeSecretKey != "" {
		billingService = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, prices)
		logger.Info("Stripe billing enabled")
	} else {
		logger.Warn("Stripe billing not configured; upgrades are unavailable")
	}

	// Initialize services
	policy := domain.EntitlementPolicy{
		FreeDailyLimit: cfg.FreeDailyLimit,
		FreeTonality:   domain.TonalityNeutral,
	}
	userService := service.NewUserService(repo, logger)
	tierService := service.NewTierService(repo, logger)
	entitlementService := service.NewEntitlementService(repo, policy, location, logger)
	analysisService := service.NewAnalysisService(repo, entitlementService, scorer, logger)

	// Initialize token verification and auth middleware
	verifier, err := auth.NewVerifier(cfg.AuthIssuer, cfg.AuthAudience, cfg.AuthJWTSecret)
	if err != nil {
		return fmt.Errorf("verifier initialization failed: %w", err)
	}
	authMw := auth.NewMiddleware(verifier, userService, logger)

	// Initialize remaining middleware
	isSecure := cfg.Env != "development"
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	analyzeLimiter := middleware.NewRateLimiter(cfg.AnalyzeRateLimit, cfg.AnalyzeRateWindow, logger)
	analyzeRateMw := middleware.NewRateLimitMiddleware(analyzeLimiter, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(userService, logger)
	tierHandler := handler.NewTierHandler(tierService, logger)
	usageHandler := handler.NewUsageHandler(entitlementService, logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, logger)
	billingHandler := handler.NewBillingHandler(billingService, userService, cfg.BaseURL, prices, logger)
	webhookHandler := handler.NewWebhookHandler(billingService, userService, tierService, logger)
	recordingHandler := handler.NewRecordingHandler(store, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Local storage URLs point at /files; development only. R2 serves
	// presigned URLs directly.
	if cfg.StorageProvider == storage.ProviderLocal {
		filesFS := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", filesFS))
	}

	// Stripe webhook (public; authenticated by signature)
	webhookHandler.RegisterRoutes(mux)

	// Protected API routes
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)

	accountHandler.RegisterRoutes(mux, requireUser)
	tierHandler.RegisterRoutes(mux, requireUser)
	usageHandler.RegisterRoutes(mux, requireUser)
	analysisHandler.RegisterRoutes(mux, requireUser, analyzeRateMw.Limit)
	billingHandler.RegisterRoutes(mux, requireUser)
	recordingHandler.RegisterRoutes(mux, requireUser)

	// Outer middleware applied to every request
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
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

	logger.Info("Graceful shutdown complete")
	return nil
}

// newScorer builds the configured speech scorer.
func newScorer(cfg *internal.Config, logger *slog.Logger) (ai.Scorer, error) {
	switch cfg.AIProvider {
	case "anthropic":
		provider, err := anthropic.New(anthropic.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
			ProviderConfig: ai.ProviderConfig{
				MaxRetries:     cfg.AIMaxRetries,
				RetryBaseDelay: cfg.AIRetryBaseDelay,
				RequestTimeout: cfg.AIRequestTimeout,
			},
		}, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return mock.New(logger), nil
	}
}

// newStorage builds the configured recording storage backend.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		r2, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		return r2, nil
	default:
		local, err := storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
