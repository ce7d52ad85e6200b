package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caredesk/user-directory/internal/api"
	"github.com/caredesk/user-directory/internal/core/ports"
	"github.com/caredesk/user-directory/internal/core/search"
	"github.com/caredesk/user-directory/internal/core/service"
	"github.com/caredesk/user-directory/internal/infrastructure/cache"
	"github.com/caredesk/user-directory/internal/infrastructure/config"
	mongodb "github.com/caredesk/user-directory/internal/infrastructure/db/mongo"
	redisdb "github.com/caredesk/user-directory/internal/infrastructure/db/redis"
	"github.com/caredesk/user-directory/internal/infrastructure/identity"
	"github.com/caredesk/user-directory/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Identity provider ---
	provider := identity.NewMongoProvider(db, cfg.JWTSecret, 0, log)
	if err := provider.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("identity index creation failed")
	}

	// --- Caches ---
	var cursors ports.CursorCache
	var rdb *redis.Client
	if cfg.Directory.CursorCacheBackend == "redis" {
		c, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer c.Close()
		rdb = c
		cursors = cache.NewRedisCursorCache(c, cfg.Directory.CacheTTL, log)
	} else {
		mem := cache.NewCursorCache(cfg.Directory.CacheTTL)
		defer mem.Close()
		cursors = mem
	}
	results := cache.NewResultCache(cfg.Directory.CacheTTL)
	defer results.Close()

	// --- Core services ---
	profiles := mongodb.NewProfileStore(db)
	projector := service.NewProjector(profiles, log)
	engine := search.NewEngine(log)
	directory := service.NewDirectoryService(provider, projector, cursors, results, engine, service.Options{
		PageSize:      cfg.Directory.PageSize,
		ScanBatchSize: cfg.Directory.SearchBatchSize,
	}, log)
	accounts := service.NewAccountService(provider, profiles, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Directory: directory,
		Accounts:  accounts,
		Verifier:  provider,
		Mongo:     db,
		Redis:     rdb,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
