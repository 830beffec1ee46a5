package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/linemk/storefront/internal/cache"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/lib/imagestore"
	"github.com/linemk/storefront/internal/service"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Redis  *redis.Client // nil, если кэш не настроен
	Images *imagestore.Store
}

// NewApp создаёт новый экземпляр App: подключение к БД, к Redis и каталог изображений
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	images, err := imagestore.New(cfg.Images.Dir)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Images: images,
	}

	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// каталог работает и без кэша
			log.Warn("redis is unavailable, catalog cache disabled", slog.String("address", cfg.Redis.Address), slog.Any("error", err))
			rdb.Close()
		} else {
			app.Redis = rdb
		}
	}

	return app, nil
}

// CatalogCache возвращает кэш каталога или заглушку, если Redis не подключен
func (a *App) CatalogCache() service.ProductCache {
	if a.Redis == nil {
		return cache.Nop{}
	}
	return cache.NewCatalogCache(a.Redis, a.Config.Redis.CatalogTTL)
}

// Close закрывает подключения
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("failed to close database", slog.Any("error", err))
	}
}
