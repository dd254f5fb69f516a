package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/database"
	"github.com/iliyamo/carmarket/internal/handler"
	"github.com/iliyamo/carmarket/internal/platform/logger"
	"github.com/iliyamo/carmarket/internal/platform/metrics"
	"github.com/iliyamo/carmarket/internal/repository"
	"github.com/iliyamo/carmarket/internal/router"
	"github.com/iliyamo/carmarket/internal/service"
	"github.com/iliyamo/carmarket/internal/storage"
	"github.com/iliyamo/carmarket/internal/view"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run schema migration before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger, autoMigrate bool) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if autoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	m := metrics.New()

	var rdb *redis.Client
	if cfg.RateLimit.Enabled {
		if rdb = config.NewRedisClient(cfg.Redis); rdb == nil {
			log.Warn("redis unreachable, rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
		} else {
			defer rdb.Close()
		}
	}

	events, err := service.NewEventPublisher(cfg)
	if err != nil {
		return err
	}
	defer events.Close()

	var images handler.ImageStore
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIOStore(ctx, cfg.MinIO, log)
		if err != nil {
			return err
		}
		images = store
	} else {
		log.Info("MINIO_ENDPOINT not set, image uploads disabled")
	}

	renderer, err := view.New()
	if err != nil {
		return err
	}

	cars := repository.NewCarRepo(db)
	deals := repository.NewDealRequestRepo(db)
	workflow := service.NewDealWorkflow(cars, deals, events, m, log)

	e := router.New(router.Deps{
		Cfg:        cfg,
		Log:        log,
		Metrics:    m,
		Redis:      rdb,
		Renderer:   renderer,
		Auth:       handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), log),
		Cars:       handler.NewCarHandler(cars, images, m, log),
		Deals:      handler.NewDealHandler(cars, deals, workflow, log),
		Statistics: handler.NewStatisticsHandler(service.NewStatistics(cars, deals), log),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
