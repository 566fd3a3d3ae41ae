// Package middleware provides logging, context propagation and rate
// limiting middleware for the application.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the limiter's Redis
// backend is unreachable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503.
	FailClosed
)

const rateLimitKeyPrefix = "ratelimit:%s:%s"

// CheckRateLimit counts one hit for id against resource and reports whether
// it still fits within limit per window. Counting only happens in
// production; test and development runs are never throttled.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	switch env {
	case "test", "development":
		return true, nil
	}

	if rdb == nil {
		return false, fmt.Errorf("rate limiter has no redis client")
	}

	key := fmt.Sprintf(rateLimitKeyPrefix, resource, id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		// The first hit in a window starts its clock.
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit caps a route at limit requests per window, keyed by the
// authenticated user when present and by remote IP otherwise. Redis outages
// fail open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit outage policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.Context(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				slog.Warn("rate limiter unavailable, rejecting request",
					"resource", resource, "path", c.Path(), "error", err)
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					&models.AppError{Code: "UNAVAILABLE", Message: "Service temporarily unavailable"})
			}
			slog.Warn("rate limiter unavailable, letting request through",
				"resource", resource, "error", err)
			return c.Next()
		}

		if !allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "Too many requests, slow down"})
		}
		return c.Next()
	}
}
