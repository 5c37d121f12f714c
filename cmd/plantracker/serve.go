package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/bootstrap"
	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/router"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inj := bootstrap.BuildContainer()
	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	deps, err := do.Invoke[*router.RouterDeps](inj)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router.NewRouter(*deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	closeResources(shutdownCtx, inj, cfg, log)
	return nil
}

func closeResources(ctx context.Context, inj *do.Injector, cfg *config.Config, log *zap.Logger) {
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Warn("flush traces", zap.Error(err))
	}
	if cfg.RabbitMQ.Enabled {
		if conn, err := do.Invoke[*amqp.Connection](inj); err == nil {
			_ = conn.Close()
		}
	}
	if rdb, err := do.Invoke[*redis.Client](inj); err == nil {
		_ = rdb.Close()
	}
	if d, err := do.Invoke[*gorm.DB](inj); err == nil {
		if sqlDB, err := d.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
