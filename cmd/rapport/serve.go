package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rapport/internal/adapters/http/api"
	"github.com/okian/rapport/internal/adapters/http/swagger"
	"github.com/okian/rapport/internal/adapters/provider"
	service "github.com/okian/rapport/internal/app"
	"github.com/okian/rapport/internal/config"
	"github.com/okian/rapport/pkg/logger"
)

// Server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh snapshots from the provider and serve the HTTP API",
		Long:  "Configuration is read from RAPPORT_CONFIG (YAML) and RAPPORT_* environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// SIGINT and SIGTERM cancel ctx.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	// defaults, then RAPPORT_CONFIG, then RAPPORT_ env
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	// Unknown levels fall back to info.
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	p, err := newProvider(cfg, log)
	if err != nil {
		return err
	}

	svc := service.New(p,
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithLookupShards(cfg.LookupShards),
		service.WithRefreshInterval(cfg.RefreshInterval()),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, cfg.MaxLeaderboardLimit,
		api.WithDefaultLimit(cfg.DefaultLeaderboardLimit),
		api.WithSnapshotState(func() (uint64, bool) {
			snap := svc.Snapshot()
			return snap.Version, snap.Loaded()
		}),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newProvider builds the configured aggregation provider.
func newProvider(cfg *config.Config, log logger.Logger) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderRPC:
		p, err := provider.NewRPCProvider(cfg.RPCBaseURL, cfg.RPCAPIKey,
			provider.WithTimeout(cfg.RPCTimeout()),
			provider.WithLogger(log.Named("provider")),
		)
		if err != nil {
			return nil, fmt.Errorf("rpc provider: %w", err)
		}
		return p, nil
	default:
		p, err := provider.NewFileProvider(cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		return p, nil
	}
}
