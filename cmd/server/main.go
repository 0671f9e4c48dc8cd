package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/cache"
	"github.com/iliyamo/queer-film-catalog/internal/config"
	"github.com/iliyamo/queer-film-catalog/internal/database"
	"github.com/iliyamo/queer-film-catalog/internal/handler"
	"github.com/iliyamo/queer-film-catalog/internal/logging"
	"github.com/iliyamo/queer-film-catalog/internal/middleware"
	"github.com/iliyamo/queer-film-catalog/internal/queue"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/router"
	"github.com/iliyamo/queer-film-catalog/internal/search"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient(ctx)
	var store cache.Store = cache.NewMemory()
	if rdb != nil {
		defer rdb.Close()
		store = cache.NewRedis(rdb, cacheCfg.Prefix)
		logger.Info("redis connected", zap.String("addr", config.RedisOptions().Addr))
	} else {
		logger.Warn("redis unavailable, using in-process cache and no rate limiting")
	}

	movies := repository.NewMovieRepo(db)
	executor := search.NewExecutor(movies, store, logger, cfg.Search, cacheCfg)
	options := search.NewOptions(repository.NewFacetRepo(db), logger)

	instance := uuid.NewString()
	eventsCfg := config.LoadEventsConfig()
	var publisher queue.Publisher = queue.NopPublisher{}
	if eventsCfg.Enabled {
		publisher = queue.NewAMQPPublisher(eventsCfg, logger)
		consumer := queue.NewConsumer(eventsCfg, queue.InvalidateOnChange(executor, instance, logger), logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())

	auth := router.Auth{Secret: cfg.JWTSecret, AdminRole: cfg.AdminRole}
	router.RegisterRoutes(e)
	router.RegisterCatalog(e, handler.NewCatalogHandler(executor, options, movies, logger),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))
	router.RegisterLists(e, handler.NewListHandler(repository.NewListRepo(db), logger), auth)
	router.RegisterAdmin(e, handler.NewAdminHandler(movies, repository.NewStatsRepo(db), executor,
		publisher, instance, logger), auth)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("db", cfg.DB.Driver), zap.String("instance", instance))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
