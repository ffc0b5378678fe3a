package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

const listKey = "todos:list"

type todoCache struct {
	client *redislib.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTodoCache creates a Redis-backed cache for the full todo listing.
// Failures are logged and swallowed so the cache can never fail a request.
func NewTodoCache(client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &todoCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *todoCache) Get(ctx context.Context) ([]domain.Todo, bool) {
	result, err := c.client.Get(ctx, listKey).Result()
	if err != nil {
		if err != redislib.Nil {
			c.logger.Warn("list cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var todos []domain.Todo
	if err := json.Unmarshal([]byte(result), &todos); err != nil {
		c.logger.Warn("list cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return todos, true
}

func (c *todoCache) Set(ctx context.Context, todos []domain.Todo) {
	payload, err := json.Marshal(todos)
	if err != nil {
		c.logger.Warn("list cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, listKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("list cache write failed", zap.Error(err))
	}
}

func (c *todoCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, listKey).Err(); err != nil {
		c.logger.Warn("list cache invalidation failed", zap.Error(err))
	}
}
