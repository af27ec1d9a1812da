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

	httpadp "gccp-api/internal/adapter/http"
	idemp "gccp-api/internal/adapter/middleware"
	"gccp-api/internal/adapter/repository/mysql"
	"gccp-api/internal/config"
	"gccp-api/internal/infrastructure/cache"
	"gccp-api/internal/infrastructure/db"
	"gccp-api/internal/infrastructure/logger"
	"gccp-api/internal/usecase/contract"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg, log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	var writeMW []echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatal("open redis", zap.Error(err))
		}
		defer rdb.Close()
		writeMW = append(writeMW, idemp.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), log))
	} else {
		log.Info("REDIS_ADDR empty: idempotency disabled")
	}

	repo := mysql.NewContractRepository(gdb)
	uc := contract.NewUsecase(repo, mysql.NewGormUoW(gdb), log,
		contract.WithStrictDateFilter(cfg.StrictDateFilter))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}), middleware.Recover())

	httpadp.RegisterRoutes(e, httpadp.NewHandler(sqlDB), httpadp.NewContractHandler(uc, log), writeMW...)

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr), zap.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
