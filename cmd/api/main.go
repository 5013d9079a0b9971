package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "salary-stream-loan/internal/adapter/http"
	idemp "salary-stream-loan/internal/adapter/middleware"
	"salary-stream-loan/internal/adapter/repository/mysql"
	"salary-stream-loan/internal/config"
	"salary-stream-loan/internal/infrastructure/cache"
	"salary-stream-loan/internal/infrastructure/db"
	"salary-stream-loan/internal/infrastructure/logger"
	"salary-stream-loan/internal/infrastructure/metrics"
	"salary-stream-loan/internal/infrastructure/scheduler"
	loanUC "salary-stream-loan/internal/usecase/loan"
	streamUC "salary-stream-loan/internal/usecase/stream"
	tokenUC "salary-stream-loan/internal/usecase/token"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		zl.Fatal("open mysql", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		zl.Fatal("mysql handle", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		zl.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// repositories + unit of work
	tx := mysql.NewGormUoW(gdb)
	flows := mysql.NewFlowRepository(gdb)

	// the loan usecase is also the reactor the stream host notifies
	loans := loanUC.NewUsecase(mysql.NewLoanRepository(gdb), flows, tx,
		loanUC.WithLogger(zl.Named("loan")),
		loanUC.WithMetrics(metrics.Loans{}),
	)
	streams := streamUC.NewUsecase(flows, tx, loans, zl.Named("stream"))
	tokens := tokenUC.NewUsecase(mysql.NewTokenRepository(gdb), tx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover(), metrics.Middleware())
	e.Use(idemp.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, zl.Named("idempotency")))

	// routes
	health := httpadp.NewHandler(map[string]httpadp.Probe{
		"mysql": sqlDB.PingContext,
		"redis": cache.Probe(rdb),
	})
	httpadp.Register(e, health,
		httpadp.NewLoanHandler(loans),
		httpadp.NewFlowHandler(streams),
		httpadp.NewTokenHandler(tokens),
	)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	sched := scheduler.New(zl.Named("scheduler"), 30*time.Second)
	if cfg.SnapshotSchedule != "" {
		err := sched.Add("outstanding-snapshot", cfg.SnapshotSchedule, func(ctx context.Context) error {
			o, err := loans.Outstanding(ctx)
			if err != nil {
				return err
			}
			metrics.RecordOutstanding(o.ActiveLoans, o.Total)
			return nil
		})
		if err != nil {
			zl.Fatal("schedule snapshot", zap.Error(err))
		}
	}
	sched.Start()

	addr := ":" + cfg.AppPort
	go func() {
		zl.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
}
