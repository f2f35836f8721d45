package healers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avenrae/avenrae-api/pkg/logging"
)

// CachedDirectory is a read-through Redis cache in front of a Directory.
// Redis failures are logged and the request falls through to next.
type CachedDirectory struct {
	next   Directory
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedDirectory wraps next. A nil client disables caching.
func NewCachedDirectory(next Directory, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) Directory {
	if redisClient == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedDirectory{next: next, redis: redisClient, ttl: ttl, logger: logger}
}

func listKey(p ListParams) string {
	return fmt.Sprintf("healers:list:%s:%s:%d:%d", p.HealerType, p.Sort, p.Limit, p.Offset)
}

func detailKey(id uuid.UUID) string {
	return "healers:detail:" + id.String()
}

func availabilityKey(id uuid.UUID) string {
	return "healers:availability:" + id.String()
}

func (c *CachedDirectory) List(ctx context.Context, p ListParams) ([]Healer, error) {
	var out []Healer
	if c.load(ctx, listKey(p), &out) {
		return out, nil
	}
	out, err := c.next.List(ctx, p)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listKey(p), out)
	return out, nil
}

func (c *CachedDirectory) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	var out Detail
	if c.load(ctx, detailKey(id), &out) {
		return &out, nil
	}
	detail, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, detailKey(id), detail)
	return detail, nil
}

func (c *CachedDirectory) Availability(ctx context.Context, id uuid.UUID) ([]Availability, error) {
	var out []Availability
	if c.load(ctx, availabilityKey(id), &out) {
		return out, nil
	}
	out, err := c.next.Availability(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, availabilityKey(id), out)
	return out, nil
}

func (c *CachedDirectory) load(ctx context.Context, key string, dest any) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("directory cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("directory cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedDirectory) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("directory cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("directory cache write failed", "key", key, "error", err)
	}
}
