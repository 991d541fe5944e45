package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/api"
	"github.com/SigNoz/storefront-go-app/internal/catalog"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/internal/storage"
	"github.com/SigNoz/storefront-go-app/pkg/config"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg := config.LoadConfig()
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server exited")
}

// run wires the application and serves until a signal arrives. Deferred
// cleanup runs on every return path.
func run(cfg *config.Config) error {
	ctx := context.Background()
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down meter provider")
		}
	}()

	kv, closeKV, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	defer func() {
		if err := closeKV.Close(); err != nil {
			log.Error().Err(err).Msg("error closing storage")
		}
	}()

	store := services.NewStore(ctx, storage.NewInstrumented(kv, cfg.StorageBackend, appMetrics), appMetrics,
		services.WithKeys(services.KeysWithPrefix(cfg.StorageKeyPrefix)),
		services.WithTimeout(cfg.StorageTimeout),
	)
	productService := services.NewProductService(catalog.Default(), appMetrics)

	app := api.NewApp(appMetrics, store, productService)
	router := mux.NewRouter()
	app.SetupRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GetAppPortInt()),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("storage", cfg.StorageBackend).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", cfg.OTELServiceName).Logger()
}

// closerFunc adapts a function to io.Closer
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStorage returns the configured key-value backend and its closer
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return storage.NewMemory(), closerFunc(func() error { return nil }), nil

	case config.StorageRedis:
		r, err := storage.DialRedis(ctx, cfg.RedisURL, cfg.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil

	case config.StorageMySQL:
		database, err := db.NewDB(cfg.GetDSN(), otel.GetMeterProvider(), cfg.OTELServiceName)
		if err != nil {
			return nil, nil, err
		}
		if err := database.InitSchema(ctx, db.Schema); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database, database, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
