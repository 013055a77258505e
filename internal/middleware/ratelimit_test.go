package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimit_EnvironmentBypass(t *testing.T) {
	for _, env := range []string{"test", "development"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "signup", "ip:1.2.3.4", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimit_NilRedisErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "signup", "ip:1.2.3.4", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimit_FixedWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := testRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be within the limit", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "login", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request must exceed the limit")

	// A different identity has its own window.
	allowed, err = CheckRateLimit(ctx, rdb, "login", "user:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("bypass in test mode", func(t *testing.T) {
		app := fiber.New()
		t.Setenv("APP_ENV", "test")
		app.Get("/test", RateLimit(nil, 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail-open with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		t.Setenv("APP_ENV", "production")
		app.Get("/test", RateLimit(nil, 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail-closed with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		t.Setenv("APP_ENV", "production")
		app.Get("/sensitive", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/sensitive", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("second request over the limit gets 429", func(t *testing.T) {
		app := fiber.New()
		t.Setenv("APP_ENV", "production")
		rdb := testRedis(t)
		app.Post("/signup", RateLimit(rdb, 1, time.Minute, "signup"), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusCreated)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signup", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/signup", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
