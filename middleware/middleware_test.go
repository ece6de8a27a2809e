package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestLogger_RequestID(t *testing.T) {
	var buf bytes.Buffer
	r := testEngine(Logger(slog.New(slog.NewJSONHandler(&buf, nil))))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"status":200`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLogger_WarnsOnClientErrors(t *testing.T) {
	var buf bytes.Buffer
	r := testEngine(Logger(slog.New(slog.NewJSONHandler(&buf, nil))))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestRateLimit_Disabled(t *testing.T) {
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := testEngine(RateLimit(RateLimitConfig{Enabled: false}, nil, lg))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	var buf bytes.Buffer
	cfg := RateLimitConfig{Enabled: true, Capacity: 1, RefillInterval: time.Minute, Prefix: "rl:test"}
	r := testEngine(RateLimit(cfg, rdb, slog.New(slog.NewTextHandler(&buf, nil))))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "rate limit check skipped")
}

func limitedEngine(t *testing.T, cfg RateLimitConfig) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return testEngine(RateLimit(cfg, rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))), mr
}

func pingFrom(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_TokenBucket(t *testing.T) {
	cfg := RateLimitConfig{Enabled: true, Capacity: 2, RefillInterval: time.Minute, Prefix: "rl:test"}
	r, mr := limitedEngine(t, cfg)

	w := pingFrom(r, "192.0.2.1:1234")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = pingFrom(r, "192.0.2.1:1234")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = pingFrom(r, "192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":"rate limit exceeded","code":"too_many_requests","retry_after":60}`, w.Body.String())

	key := "rl:test:ip:192.0.2.1:route:GET /ping"
	require.True(t, mr.Exists(key))
	assert.Equal(t, "0", mr.HGet(key, "tokens"))
	assert.Equal(t, 5*time.Minute, mr.TTL(key))
}

func TestRateLimit_BucketsArePerClient(t *testing.T) {
	cfg := RateLimitConfig{Enabled: true, Capacity: 1, RefillInterval: time.Minute, Prefix: "rl:test"}
	r, _ := limitedEngine(t, cfg)

	assert.Equal(t, http.StatusOK, pingFrom(r, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, pingFrom(r, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusOK, pingFrom(r, "198.51.100.7:1234").Code)
}

func TestRateLimit_Refills(t *testing.T) {
	cfg := RateLimitConfig{Enabled: true, Capacity: 1, RefillInterval: 50 * time.Millisecond, Prefix: "rl:test"}
	r, _ := limitedEngine(t, cfg)

	assert.Equal(t, http.StatusOK, pingFrom(r, "192.0.2.1:1234").Code)
	w := pingFrom(r, "192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, http.StatusOK, pingFrom(r, "192.0.2.1:1234").Code)
}
