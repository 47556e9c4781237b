// Package main runs one live price chart headlessly: it resolves the token,
// backfills history, follows live ticks and serves the chart state over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"solana-price-chart/internal/backfill"
	"solana-price-chart/internal/chart"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/logging"
	"solana-price-chart/internal/marketdata"
	"solana-price-chart/internal/pricefeed"
	"solana-price-chart/internal/storage"
	"solana-price-chart/internal/storage/memory"
	"solana-price-chart/internal/storage/migrations"
	pgstore "solana-price-chart/internal/storage/postgres"
	"solana-price-chart/internal/theme"
	"solana-price-chart/internal/tokens"
)

func main() {
	// Load .env file if exists; real env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	mint := flag.String("mint", os.Getenv("CHART_MINT"), "Token mint address")
	pool := flag.String("pool", os.Getenv("CHART_POOL"), "Pool address (resolved from the mint when empty)")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("PRICE_WS_ENDPOINT"), "Live price WebSocket endpoint (poll only when empty)")
	apiBaseURL := flag.String("api-base-url", envOr("MARKETDATA_BASE_URL", marketdata.DefaultBaseURL), "Market data REST API base URL")
	apiRate := flag.Float64("api-rate", float64(marketdata.DefaultRateLimit), "Market data requests per second")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN for the token pool catalog (memory when empty)")
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP status address")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level")
	logPretty := flag.Bool("log-pretty", os.Getenv("LOG_PRETTY") == "true", "Human readable logs")
	dark := flag.Bool("dark", true, "Start in dark theme")
	connectTimeout := flag.Duration("connect-timeout", 5*time.Second, "WebSocket connect timeout")
	pollInterval := flag.Duration("poll-interval", 10*time.Second, "Fallback poll interval")
	width := flag.Int("width", 800, "Chart width in pixels")
	height := flag.Int("height", 400, "Chart height in pixels")

	flag.Parse()

	logging.Setup(*logLevel, *logPretty)
	logger := logging.New("chart")

	if *mint == "" {
		logger.Fatal().Msg("--mint is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := createStore(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token pool store")
	}
	defer cleanup()

	client := marketdata.NewClient(
		marketdata.WithBaseURL(*apiBaseURL),
		marketdata.WithRateLimit(rate.Limit(*apiRate), marketdata.DefaultBurst),
	)
	resolver := tokens.NewResolver(client, tokens.Options{
		Store:  store,
		Logger: logging.New("tokens"),
	})

	loop := eventloop.New()
	app := NewApp(AppConfig{
		Loop:     loop,
		Resolver: resolver,
		Theme:    theme.NewSignal(*dark),
		Width:    *width,
		Height:   *height,
		Logger:   logger,
		History: backfill.New(client, backfill.Options{
			Logger: logging.New("backfill"),
		}),
		Feeds: chart.TransportFeeds(loop,
			pricefeed.NewWSDialer(loop, nil),
			client,
			pricefeed.Config{
				Endpoint:       *wsEndpoint,
				ConnectTimeout: *connectTimeout,
				PollInterval:   *pollInterval,
			},
			logging.New("pricefeed"),
		),
	})

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error().Msg("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	// The loop outlives ctx so the chart can be unmounted on it during shutdown.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(loopCtx) }()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              *httpAddr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", *httpAddr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	if err := app.Open(ctx, *mint, *pool); err != nil {
		logger.Error().Err(err).Str("mint", *mint).Msg("failed to open chart")
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown")
	}

	app.Close()
	stopLoop()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("event loop error")
	}
	close(done)

	logger.Info().Msg("shutdown complete")
}

// createStore returns the token pool catalog: postgres when a DSN is set,
// memory otherwise.
func createStore(ctx context.Context, postgresDSN string) (storage.TokenPoolStore, func(), error) {
	if postgresDSN == "" {
		return memory.NewTokenPoolStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewTokenPoolStore(pool), pool.Close, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
