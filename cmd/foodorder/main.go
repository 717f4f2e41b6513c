package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"foodorder/internal/cache"
	"foodorder/internal/config"
	"foodorder/internal/database"
	"foodorder/internal/handler"
	"foodorder/internal/seed"
	"foodorder/internal/service"
	"foodorder/internal/store"
	"foodorder/internal/store/memory"
	"foodorder/internal/store/mongo"
	"foodorder/internal/store/postgres"
	"foodorder/internal/worker"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	if cfg.Seed {
		if err := seed.Run(ctx, st, time.Now().UTC()); err != nil {
			slog.Error("failed to seed data", "error", err)
			os.Exit(1)
		}
	}

	foodCache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	// Services
	pricingSvc := service.NewPricingService(st)
	svc := handler.Services{
		Auth:    service.NewAuthService(st),
		Catalog: service.NewCatalogService(st, foodCache),
		Orders:  service.NewOrderService(st, st, pricingSvc),
		Pricing: pricingSvc,
		Health:  st,
	}

	srv := &http.Server{
		Addr: cfg.RunAddress,
		Handler: handler.NewRouter(svc, handler.RouterConfig{
			JWTSecret:      cfg.JWTSecret,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if cfg.SweepInterval > 0 {
		go worker.NewPromoExpiryWorker(pricingSvc, cfg.SweepInterval).Start(ctx)
	}

	slog.Info("starting server", "addr", cfg.RunAddress, "storage", cfg.Storage)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := database.NewDB(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		if err := database.InitSchema(ctx, db); err != nil {
			database.CloseDB(db)
			return nil, err
		}
		return postgres.New(db), nil
	case config.StorageMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		s, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTransactions)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		return s, nil
	}
}

// openCache returns the Redis catalog cache, or a no-op one when Redis is
// not configured or not reachable.
func openCache(ctx context.Context, cfg *config.Config) (service.FoodCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return cache.Noop{}, func() {}
	}

	slog.Info("catalog cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	return cache.NewRedis(client, cfg.CacheTTL), func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}
}
