package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/mailer"
	"github.com/iliyamo/carmarket/internal/platform/logger"
	"github.com/iliyamo/carmarket/internal/queue"
)

func dealLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deal-log",
		Short: "Consume deal events from RabbitMQ into the deal log and mail seekers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)
			defer func() { _ = log.Sync() }()

			var notifier queue.Notifier
			if m, err := mailer.New(cfg.SMTP); err == nil {
				notifier = m
			} else if errors.Is(err, mailer.ErrNotConfigured) {
				log.Info("SMTP not configured, seekers will not be mailed", zap.String("host", cfg.SMTP.Host))
			} else {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = queue.NewDealLogConsumer(cfg.RabbitURL, cfg.LogDir, notifier, log).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
