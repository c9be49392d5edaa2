package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/web/response"
)

// Increments the counter and sets the TTL on first hit.
// KEYS[1] = counter key, ARGV[1] = window in seconds. Returns {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	KeyFunc   func(*gin.Context) string
}

// RateLimiter counts requests per key in fixed windows. Counters live in
// Redis when a client is given; otherwise, and whenever Redis errors, in memory.
type RateLimiter struct {
	cfg   RateLimitConfig
	redis *goredis.Client
	log   *zap.Logger

	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

const maxMemoryEntries = 10000

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(cfg RateLimitConfig, client *goredis.Client, log *zap.Logger) *RateLimiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:"
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &RateLimiter{
		cfg:     cfg,
		redis:   client,
		log:     log.With(zap.String("component", "rate_limit")),
		entries: make(map[string]*rateLimitEntry),
	}
}

// Hit counts one request for key and reports the running count and window reset.
func (l *RateLimiter) Hit(ctx context.Context, key string, now time.Time) (int, time.Time) {
	fullKey := l.cfg.KeyPrefix + key
	if l.redis != nil {
		count, resetAt, err := l.hitRedis(ctx, fullKey, now)
		if err == nil {
			return count, resetAt
		}
		l.log.Warn("redis rate limit unavailable, using memory", zap.Error(err))
	}
	return l.hitMemory(fullKey, now)
}

func (l *RateLimiter) hitRedis(ctx context.Context, key string, now time.Time) (int, time.Time, error) {
	window := int(l.cfg.Window.Seconds())
	if window < 1 {
		window = 1
	}
	result, err := l.redis.Eval(ctx, rateLimitLuaScript, []string{key}, window).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval: %w", err)
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, errors.New("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), now.Add(time.Duration(ttl) * time.Second), nil
}

func (l *RateLimiter) hitMemory(key string, now time.Time) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= maxMemoryEntries {
		l.pruneLocked(now)
	}
	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &rateLimitEntry{resetAt: now.Add(l.cfg.Window)}
		l.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt
}

// prune drops expired in-memory windows.
func (l *RateLimiter) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
}

func (l *RateLimiter) pruneLocked(now time.Time) {
	for key, entry := range l.entries {
		if !now.Before(entry.resetAt) {
			delete(l.entries, key)
		}
	}
}

// Middleware rejects requests over the limit with 429. HTMX requests get a
// short HTML notice so it can be swapped into the page.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		count, resetAt := l.Hit(c.Request.Context(), l.cfg.KeyFunc(c), now)

		remaining := l.cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count <= l.cfg.Limit {
			c.Next()
			return
		}

		retryAfter := int(resetAt.Sub(now).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		l.log.Info("rate limit triggered", zap.String("path", c.FullPath()))

		if c.GetHeader("HX-Request") == "true" {
			c.Data(http.StatusTooManyRequests, "text/html; charset=utf-8",
				[]byte(`<div class="form-error" role="alert">Too many messages. Please try again in a minute.</div>`))
		} else {
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		}
		c.Abort()
	}
}
