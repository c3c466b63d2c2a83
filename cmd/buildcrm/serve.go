package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/edvin/buildcrm/internal/api"
	"github.com/edvin/buildcrm/internal/cache"
	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/db"
	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/internal/metrics"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply pending migrations on startup")
}

func serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !skipMigrate {
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	catalogCache, err := cache.New(cfg.CatalogCacheBytes, 10*time.Minute)
	if err != nil {
		return fmt.Errorf("create catalog cache: %w", err)
	}
	defer catalogCache.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		natsPub, err := events.Connect(ctx, cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = events.NewAsync(natsPub, logger, 1024)
		logger.Info().Str("url", cfg.NATSURL).Msg("publishing domain events to NATS")
	}
	defer publisher.Close()

	if err := metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
		return fmt.Errorf("register pool metrics: %w", err)
	}
	if err := metrics.RegisterCacheMetrics(prometheus.DefaultRegisterer, catalogCache); err != nil {
		return fmt.Errorf("register cache metrics: %w", err)
	}

	services, err := core.NewServices(pool, catalogCache, publisher, core.ServicesConfig{
		JWTSecret: cfg.JWTSecret,
		JWTIssuer: cfg.JWTIssuer,
		JWTTTL:    cfg.JWTTTL,
	})
	if err != nil {
		return err
	}

	if err := seedAll(ctx, services); err != nil {
		return err
	}

	srv := api.NewServer(logger, pool, services, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting BuildCRM API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
