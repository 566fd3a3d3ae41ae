package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimit(t *testing.T) {
	t.Run("counts against the limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := rateLimitRedis(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should be allowed", i+1)
		}

		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr, rdb := rateLimitRedis(t)
		ctx := context.Background()

		_, err := CheckRateLimit(ctx, rdb, "login", "ip:5.6.7.8", 1, time.Minute)
		require.NoError(t, err)

		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:5.6.7.8", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		mr.FastForward(2 * time.Minute)

		allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:5.6.7.8", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("resources are counted separately", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := rateLimitRedis(t)
		ctx := context.Background()

		_, err := CheckRateLimit(ctx, rdb, "signup", "ip:9.9.9.9", 1, time.Minute)
		require.NoError(t, err)

		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:9.9.9.9", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("bypassed outside production", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")

		allowed, err := CheckRateLimit(context.Background(), nil, "signup", "ip:1.1.1.1", 0, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("nil redis is an error", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")

		allowed, err := CheckRateLimit(context.Background(), nil, "signup", "ip:1.1.1.1", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("returns 429 over the limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := rateLimitRedis(t)

		app := fiber.New()
		app.Get("/limited", RateLimit(rdb, 2, time.Minute, "limited"), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "RATE_LIMITED", body.Code)
	})

	t.Run("fail-open lets requests through without redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")

		app := fiber.New()
		app.Get("/open", RateLimit(nil, 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest("GET", "/open", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})

	t.Run("fail-closed returns 503 without redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")

		app := fiber.New()
		app.Get("/closed", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/closed", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
