package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"foodorder/internal/model"
)

const (
	foodKeyPrefix = "food:"
	categoriesKey = "food:categories"
)

// Redis is a read-through cache for catalog lookups. Cache errors are
// logged and treated as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) GetFood(ctx context.Context, foodID string) (*model.Food, bool) {
	var f model.Food
	if !c.get(ctx, foodKeyPrefix+foodID, &f) {
		return nil, false
	}
	return &f, true
}

func (c *Redis) SetFood(ctx context.Context, f *model.Food) {
	c.set(ctx, foodKeyPrefix+f.ID, f)
}

func (c *Redis) GetCategories(ctx context.Context) ([]string, bool) {
	var categories []string
	if !c.get(ctx, categoriesKey, &categories) {
		return nil, false
	}
	return categories, true
}

func (c *Redis) SetCategories(ctx context.Context, categories []string) {
	c.set(ctx, categoriesKey, categories)
}

// Invalidate drops the item and the category list, which may have changed
// with it.
func (c *Redis) Invalidate(ctx context.Context, foodID string) {
	if err := c.client.Del(ctx, foodKeyPrefix+foodID, categoriesKey).Err(); err != nil {
		slog.Warn("cache invalidate failed", "id", foodID, "error", err)
	}
}

func (c *Redis) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Redis) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) GetFood(context.Context, string) (*model.Food, bool) { return nil, false }
func (Noop) SetFood(context.Context, *model.Food)                {}
func (Noop) GetCategories(context.Context) ([]string, bool)      { return nil, false }
func (Noop) SetCategories(context.Context, []string)             {}
func (Noop) Invalidate(context.Context, string)                  {}
