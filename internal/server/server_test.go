package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "Str0ngPassw0rd!"

var (
	setupOnce sync.Once
	testApp   *fiber.App
	testSrv   *Server
	testRedis *miniredis.Miniredis
)

// testServer builds one shared app backed by in-memory SQLite and miniredis.
// Shared because the Prometheus middleware registers collectors globally and
// can only be constructed once per process.
func testServer(t *testing.T) *fiber.App {
	t.Helper()

	setupOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			panic("failed to open test database: " + err.Error())
		}
		if err := database.Migrate(db); err != nil {
			panic("failed to migrate test database: " + err.Error())
		}

		mr, err := miniredis.Run()
		if err != nil {
			panic("failed to start miniredis: " + err.Error())
		}
		testRedis = mr

		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cache.SetClient(rdb)

		cfg := &config.Config{
			Env:             "test",
			Port:            "0",
			JWTSecret:       "test-secret-key",
			FeedPageSize:    5,
			ExplorePageSize: 7,
			InboxPageSize:   5,
		}

		srv, err := NewServerWithDeps(cfg, db, rdb, nil)
		if err != nil {
			panic("failed to build test server: " + err.Error())
		}
		testSrv = srv

		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				if fiberErr, ok := err.(*fiber.Error); ok {
					return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
				}
				return models.RespondWithError(c, fiber.StatusInternalServerError,
					models.NewInternalError(err))
			},
		})
		srv.SetupMiddleware(app)
		srv.SetupRoutes(app)
		testApp = app
	})

	return testApp
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

// signupUser registers a fresh account and returns its auth token.
func signupUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, body := doJSON(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "signup for %s failed: %v", username, body)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
