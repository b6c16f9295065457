package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/circleworks/beacon/internal/api"
	"github.com/circleworks/beacon/internal/config"
	"github.com/circleworks/beacon/internal/geo"
	"github.com/circleworks/beacon/internal/session"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var seedPath string

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Beacon - geosocial intent matching service",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&seedPath, "seed", "",
		"YAML file of intents loaded into the default session at startup")
	rootCmd.AddCommand(geocodeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	logger := slog.New(newLogHandler(cfg.Log))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	// Initialize geocoding stack: HTTP client, persistent cache, memo.
	resolver, cache, err := buildResolver(cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}
	slog.Info("geocoder initialized",
		"base_url", cfg.Geocoder.BaseURL,
		"cache_enabled", cfg.GeoCache.Enabled,
	)

	// Session manager
	sessions := session.NewManager(resolver)

	// Seed the default session if requested
	if seedPath != "" {
		n, err := seedDefaultSession(sessions, seedPath)
		if err != nil {
			return fmt.Errorf("seed intents: %w", err)
		}
		slog.Info("seed intents loaded", "count", n, "path", seedPath)
	}

	// HTTP router and server
	handler := api.NewHandler(sessions, resolver, Version)
	router := api.NewRouter(handler, sessions)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// Background workers
	var wg sync.WaitGroup
	startWorker(ctx, &wg, "session-pruner", func(ctx context.Context) {
		pruneLoop(ctx, sessions,
			time.Duration(cfg.Sessions.PruneInterval),
			time.Duration(cfg.Sessions.IdleTTL))
	})

	// Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called
		// gracefully; anything else should trigger shutdown.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	wg.Wait()

	slog.Info("shutdown complete")
	return nil
}

// buildResolver assembles the geocoding stack from config.
func buildResolver(cfg *config.Config) (geo.Resolver, *geo.Cache, error) {
	client := geo.NewNominatimClient(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		&http.Client{Timeout: time.Duration(cfg.Geocoder.Timeout)},
	)

	var cache *geo.Cache
	if cfg.GeoCache.Enabled {
		var err error
		cache, err = geo.OpenCache(cfg.GeoCache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open geocode cache: %w", err)
		}
	}

	memo, err := geo.NewMemoResolver(client, cfg.Geocoder.MemoSize, cache)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, nil, err
	}
	return memo, cache, nil
}

// pruneLoop evicts idle sessions until the context is cancelled.
func pruneLoop(ctx context.Context, sessions *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.PruneIdle(ttl)
		}
	}
}

// startWorker launches a background worker goroutine that respects context
// cancellation. Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}

func newLogHandler(cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
