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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	httpadp "mortgage-backend/internal/adapter/http"
	"mortgage-backend/internal/adapter/middleware"
	"mortgage-backend/internal/adapter/repository/mysql"
	"mortgage-backend/internal/config"
	"mortgage-backend/internal/infrastructure/cache"
	"mortgage-backend/internal/infrastructure/db"
	"mortgage-backend/internal/infrastructure/metrics"
	ucCondition "mortgage-backend/internal/usecase/condition"
	ucLoan "mortgage-backend/internal/usecase/loan"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	lvl, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// repositories + unit of work
	loans := mysql.NewLoanRepository(gdb)
	transitions := mysql.NewTransitionRepository(gdb)
	conditions := mysql.NewConditionRepository(gdb)
	users := mysql.NewUserDirectory(gdb)
	tx := mysql.NewGormUoW(gdb)

	loanUC := ucLoan.NewUsecase(loans, transitions, users, tx,
		ucLoan.WithLogger(logger.With("component", "loans")), ucLoan.WithMetrics(m))
	tracker := ucCondition.NewTracker(loans, conditions, users, tx,
		ucCondition.WithLogger(logger.With("component", "conditions")), ucCondition.WithMetrics(m))

	h := httpadp.NewHandler(map[string]httpadp.Check{
		"mysql": sqlDB.PingContext,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	api := e.Group("/api/v1",
		middleware.Auth([]byte(cfg.JWTSecret), cfg.JWTIssuer, users, logger),
		middleware.Idempotency(rdb, cfg.IdempotencyTTL(), logger),
	)
	httpadp.Register(api,
		httpadp.NewLoanHandler(loanUC, logger),
		httpadp.NewConditionHandler(tracker, logger),
		middleware.RequireStaff(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	addr := ":" + cfg.AppPort
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
