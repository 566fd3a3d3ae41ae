// Package bootstrap wires configuration, storage and observability together
// for the binaries under cmd/.
package bootstrap

import (
	"context"
	"fmt"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/observability"
	"chirp/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedTopics inserts the built-in topic set on boot.
	SeedTopics bool
}

// Runtime holds the process-wide dependencies established at startup.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	tracingShutdown func(context.Context) error
}

// InitRuntime connects to Postgres and Redis, initializes tracing and
// optionally seeds the built-in topics. Redis being unreachable is not
// fatal; the app degrades to uncached reads and no live notifications.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "chirp-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	if opts.SeedTopics {
		if err := seed.Topics(db); err != nil {
			return nil, fmt.Errorf("failed to seed built-in topics: %w", err)
		}
	}

	return &Runtime{
		DB:              db,
		Redis:           cache.GetClient(),
		tracingShutdown: shutdownTracing,
	}, nil
}

// Shutdown flushes any pending trace spans.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.tracingShutdown != nil {
		return r.tracingShutdown(ctx)
	}
	return nil
}
