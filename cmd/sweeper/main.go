// Command sweeper expires every pending or in-progress condition whose due
// date has passed. It runs once and exits; schedule it externally.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"mortgage-backend/internal/adapter/repository/mysql"
	"mortgage-backend/internal/config"
	"mortgage-backend/internal/infrastructure/db"
	"mortgage-backend/internal/infrastructure/metrics"
	ucCondition "mortgage-backend/internal/usecase/condition"
)

func main() {
	cfg := config.Load()
	lvl, err := cfg.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	n, err := sweep(ctx, cfg, logger)
	if err != nil {
		logger.Error("sweep failed", "expired", n, "err", err)
		os.Exit(1)
	}
	logger.Info("sweep done", "expired", n)
}

func sweep(ctx context.Context, cfg *config.Config, logger *slog.Logger) (int, error) {
	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		return 0, err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	reg := prometheus.NewRegistry()
	tracker := ucCondition.NewTracker(
		mysql.NewLoanRepository(gdb),
		mysql.NewConditionRepository(gdb),
		mysql.NewUserDirectory(gdb),
		mysql.NewGormUoW(gdb),
		ucCondition.WithLogger(logger),
		ucCondition.WithMetrics(metrics.New(reg)),
	)
	expired, err := tracker.ExpireOverdue(ctx, cfg.SweeperActor)

	if cfg.PushgatewayURL != "" {
		if perr := push.New(cfg.PushgatewayURL, "condition_sweeper").Gatherer(reg).PushContext(ctx); perr != nil {
			logger.Warn("metrics push failed", "url", cfg.PushgatewayURL, "err", perr)
		}
	}
	return len(expired), err
}
