package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
)

const (
	taskListKey = "tasks:list"
	taskListTTL = 30 * time.Second
)

// TaskCache keeps the unfiltered task list in Redis so the dashboard's
// hot path does not hit Postgres on every poll.
type TaskCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTaskCache constructs the cache. A nil client disables caching.
func NewTaskCache(client *redis.Client, logger *zap.Logger) *TaskCache {
	return &TaskCache{client: client, logger: logger}
}

// GetList returns the cached task list, or ok=false on miss or error.
func (c *TaskCache) GetList(ctx context.Context) ([]domain.Task, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, taskListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("task cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var tasks []domain.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		c.logger.Warn("task cache decode failed", zap.Error(err))
		return nil, false
	}
	return tasks, true
}

// SetList stores the task list. Failures are logged, never surfaced.
func (c *TaskCache) SetList(ctx context.Context, tasks []domain.Task) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(tasks)
	if err != nil {
		c.logger.Warn("task cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, taskListKey, raw, taskListTTL).Err(); err != nil {
		c.logger.Warn("task cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list after a task write.
func (c *TaskCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, taskListKey).Err(); err != nil {
		c.logger.Warn("task cache invalidate failed", zap.Error(err))
	}
}
