package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avenrae/avenrae-api/pkg/logging"
)

// PoolConfig tunes the postgres connection pool.
type PoolConfig struct {
	URL                string
	MaxConns           int
	MinConns           int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
}

// Open parses the connection string, applies pool limits and attaches the
// slow query tracer. The returned pool has been pinged.
func Open(ctx context.Context, cfg PoolConfig, logger *logging.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database: DATABASE_URL is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("database: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 && cfg.MinConns <= cfg.MaxConns {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.SlowQueryThreshold > 0 {
		poolCfg.ConnConfig.Tracer = NewSlowQueryTracer(cfg.SlowQueryThreshold, logger)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return pool, nil
}

type queryStartKey struct{}

type queryStart struct {
	sql     string
	started time.Time
}

// SlowQueryTracer logs statements whose duration exceeds the threshold.
type SlowQueryTracer struct {
	threshold time.Duration
	logger    *logging.Logger
	now       func() time.Time
}

func NewSlowQueryTracer(threshold time.Duration, logger *logging.Logger) *SlowQueryTracer {
	if logger == nil {
		logger = logging.Default()
	}
	return &SlowQueryTracer{threshold: threshold, logger: logger, now: time.Now}
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, started: t.now()})
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.started)
	if elapsed < t.threshold {
		return
	}
	args := []any{"duration_ms", elapsed.Milliseconds(), "sql", start.sql}
	if data.Err != nil {
		args = append(args, "error", data.Err)
	}
	t.logger.Warn("slow query", args...)
}
