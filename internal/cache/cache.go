// Package cache хранит список товаров каталога в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	catalogKey    = "catalog:products"
	generationKey = "catalog:generation"
)

// CatalogCache — кэш полного списка товаров в Redis, значение хранится в JSON.
// Каждый сброс увеличивает поколение; список, прочитанный из БД до сброса,
// в кэш уже не попадет.
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

// GetProducts возвращает false, если в кэше ничего нет.
func (c *CatalogCache) GetProducts(ctx context.Context) ([]*models.Product, bool, error) {
	val, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []*models.Product
	if err := json.Unmarshal(val, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

// Generation возвращает текущее поколение кэша; читается до запроса в БД.
func (c *CatalogCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetProducts кладет список в кэш, только если поколение все еще равно gen.
// Возвращает false, если между чтением из БД и записью кэш был сброшен.
func (c *CatalogCache) SetProducts(ctx context.Context, gen int64, products []*models.Product) (bool, error) {
	b, err := json.Marshal(products)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, catalogKey, b, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		// сброс пришел во время записи
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored, nil
}

// Invalidate удаляет список и увеличивает поколение в одной транзакции.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	return err
}

// Nop — кэш-заглушка, когда Redis не настроен
type Nop struct{}

func (Nop) GetProducts(context.Context) ([]*models.Product, bool, error) { return nil, false, nil }
func (Nop) Generation(context.Context) (int64, error)                   { return 0, nil }
func (Nop) SetProducts(context.Context, int64, []*models.Product) (bool, error) {
	return false, nil
}
func (Nop) Invalidate(context.Context) error { return nil }
