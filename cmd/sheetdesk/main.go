package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryanbastic/go-sheetdesk/internal/api"
	"github.com/ryanbastic/go-sheetdesk/internal/auth"
	"github.com/ryanbastic/go-sheetdesk/internal/circuitbreaker"
	"github.com/ryanbastic/go-sheetdesk/internal/config"
	"github.com/ryanbastic/go-sheetdesk/internal/gsheets"
	"github.com/ryanbastic/go-sheetdesk/internal/metrics"
	"github.com/ryanbastic/go-sheetdesk/internal/pixel"
	"github.com/ryanbastic/go-sheetdesk/internal/spreadsheet"
	"github.com/ryanbastic/go-sheetdesk/internal/storage"
)

const (
	sessionTTL    = 24 * time.Hour
	shutdownDrain = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.LogLevel)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	views, err := api.LoadViews()
	if err != nil {
		logger.Error("failed to load views", "error", err)
		os.Exit(1)
	}
	if !views.Has(cfg.URLPrefix + "main") {
		logger.Error("no main view for URL prefix", "url_prefix", cfg.URLPrefix)
		os.Exit(1)
	}

	// Spreadsheet session is opened lazily on first use
	sheetsClient := gsheets.NewClient(cfg.CredentialsPath, cfg.ApplicationName, logger)
	sheetService := spreadsheet.NewService(sheetsClient, cfg.SpreadsheetID, logger)
	health := map[string]api.Pinger{"sheets": sheetsClient}

	// Member records are optional
	var members api.MemberFinder
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if err := storage.RunMigrations(ctx, pool); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("member database ready")

		prometheus.MustRegister(metrics.NewPoolCollector("members", pool))
		store := storage.NewPostgresStore(pool, cfg.DBQueryTimeout)
		members = store
		health["members"] = store
	} else {
		logger.Warn("DATABASE_URL not set, member lookups will deny every email")
	}

	breaker := circuitbreaker.New(cfg.PixelBreakerMaxFailure, cfg.PixelBreakerReset,
		circuitbreaker.WithFailureFilter(pixel.IsTransient),
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			logger.Warn("conversions breaker state changed", "from", from.String(), "to", to.String())
		}),
	)
	pixelClient := pixel.NewClient(pixel.Config{
		GraphURL:   cfg.PixelGraphURL,
		APIVersion: cfg.PixelAPIVersion,
		MaxRetries: cfg.PixelRetryMax,
		BaseDelay:  cfg.PixelRetryBackoff,
		Timeout:    cfg.PixelTimeout,
	}, breaker, logger)

	var oauth api.OAuthProvider
	if cfg.OAuthEnabled() {
		oauth = auth.NewProvider(auth.ProviderConfig{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
		}, logger)
	} else {
		logger.Warn("OAuth client not configured, sign-in disabled")
	}

	handler := api.NewServer(api.ServerConfig{
		Logger:    logger,
		Sheets:    sheetService,
		Views:     views,
		Sessions:  auth.NewSessionStore(sessionTTL),
		OAuth:     oauth,
		Pixel:     pixelClient,
		Members:   members,
		URLPrefix: cfg.URLPrefix,
		Health:    health,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Port, "spreadsheet_id", cfg.SpreadsheetID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownDrain)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
