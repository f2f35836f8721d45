package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/avenrae/avenrae-api/internal/config"
	"github.com/avenrae/avenrae-api/internal/observability/metrics"
)

func TestSetupMetricsExposesBookingCounters(t *testing.T) {
	registry, handler := setupMetrics()
	if registry == nil || handler == nil {
		t.Fatalf("expected non-nil registry and handler")
	}

	m := metrics.NewBookingMetrics(registry)
	m.ObserveCreated("online")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `avenrae_bookings_created_total{booking_type="online"} 1`) {
		t.Fatalf("expected booking counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go runtime collector")
	}
}

func TestPoolConfigFromAppConfig(t *testing.T) {
	cfg := &appconfig.Config{
		DatabaseURL:          "postgres://avenrae@localhost/avenrae",
		DBMaxConns:           15,
		DBMinConns:           3,
		DBConnMaxLifetime:    time.Hour,
		DBSlowQueryThreshold: 250 * time.Millisecond,
	}
	pc := poolConfig(cfg)
	if pc.URL != cfg.DatabaseURL || pc.MaxConns != 15 || pc.MinConns != 3 {
		t.Fatalf("unexpected pool config: %+v", pc)
	}
	if pc.SlowQueryThreshold != 250*time.Millisecond {
		t.Fatalf("unexpected slow query threshold %v", pc.SlowQueryThreshold)
	}
}

func TestReadinessChecksSkipMissingDependencies(t *testing.T) {
	if checks := readinessChecks(nil, nil); len(checks) != 0 {
		t.Fatalf("expected no checks, got %d", len(checks))
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	checks := readinessChecks(nil, client)
	if len(checks) != 1 || checks[0].Name != "redis" {
		t.Fatalf("expected a single redis check, got %+v", checks)
	}
	if err := checks[0].Check(t.Context()); err != nil {
		t.Fatalf("redis check failed: %v", err)
	}
}
