package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "water-chiller-check/internal/adapter/http"
	mw "water-chiller-check/internal/adapter/middleware"
	"water-chiller-check/internal/adapter/repository/mysql"
	"water-chiller-check/internal/config"
	"water-chiller-check/internal/infrastructure/cache"
	"water-chiller-check/internal/infrastructure/db"
	"water-chiller-check/internal/infrastructure/logger"
	"water-chiller-check/internal/infrastructure/metrics"
	"water-chiller-check/internal/usecase/check"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "water-chiller-check")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DSN(), log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	strict := cfg.WriteMode == config.WriteStrict
	if err := db.Migrate(gdb, strict); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}
	defer func() { _ = rdb.Close() }()

	prom := metrics.NewPrometheus()
	usecase := check.NewUsecase(
		mysql.NewCheckRepository(gdb),
		mysql.NewResultRepository(gdb),
		mysql.NewGormUoW(gdb),
		check.Options{Strict: strict, OwnershipCheck: cfg.OwnershipCheck},
	).WithMetrics(prom).WithLogger(log.Named("check"))

	renderer, err := httpadp.NewTemplateRenderer()
	if err != nil {
		log.Fatal("failed to parse views", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Renderer = renderer
	// HTML forms tunnel PUT through POST
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))
	e.Use(middleware.Recover(), middleware.RequestID(), logger.RequestLogger(log))

	// routes
	e.GET("/health", httpadp.NewHandler(sqlDB).Health)
	e.GET("/metrics", echo.WrapHandler(prom.Handler()))

	checks := httpadp.NewCheckHandler(usecase, cache.NewFlashStore(rdb), log.Named("http"))
	idem := mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log.Named("idempotency"))
	checks.Routes(e.Group("/water-chiller", mw.Authenticate()), idem)

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("write_mode", string(cfg.WriteMode)))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	_ = sqlDB.Close()
}
