package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/avenrae/avenrae-api/internal/config"
	"github.com/avenrae/avenrae-api/internal/healers"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// BuildRedisClient returns nil when REDIS_ADDR is unset. With verify set, an
// unreachable server also yields nil so the directory runs uncached.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil {
		return nil
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := &redis.Options{Addr: addr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; serving directory without cache", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildDirectory returns the healer directory, wrapped in the Redis cache
// when a client is available and the TTL is positive.
func BuildDirectory(pool *pgxpool.Pool, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) healers.Directory {
	repo := healers.NewRepository(pool)
	if redisClient == nil || cfg == nil || cfg.DirectoryCacheTTL <= 0 {
		return repo
	}
	return healers.NewCachedDirectory(repo, redisClient, cfg.DirectoryCacheTTL, logger)
}
