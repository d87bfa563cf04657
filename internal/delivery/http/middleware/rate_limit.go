package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for one rate limited route group
type RateLimitConfig struct {
	// Requests per window; 0 disables the limiter
	Limit  int
	Window time.Duration
	// Key prefix for Redis, e.g. "rl:register:"
	KeyPrefix string
	// Reject requests when Redis fails instead of falling back to memory
	FailClosed bool
	// Default: client IP
	KeyFunc func(*gin.Context) string
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

var rateLimitScript = goredis.NewScript(rateLimitLuaScript)

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// RateLimiter counts requests in Redis when a client is configured and in
// process memory otherwise.
type RateLimiter struct {
	redis *goredis.Client
	audit *audit.Logger
	store sync.Map
	now   func() time.Time
}

func NewRateLimiter(client *goredis.Client, auditLogger *audit.Logger) *RateLimiter {
	if auditLogger == nil {
		auditLogger = audit.Nop()
	}
	return &RateLimiter{redis: client, audit: auditLogger, now: time.Now}
}

// StartCleanup drops expired in-memory counters until ctx is done.
func (l *RateLimiter) StartCleanup(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := l.now()
				l.store.Range(func(key, value interface{}) bool {
					entry := value.(*rateLimitEntry)
					entry.mu.Lock()
					if now.After(entry.resetAt) {
						l.store.Delete(key)
					}
					entry.mu.Unlock()
					return true
				})
			}
		}
	}()
}

func (l *RateLimiter) Middleware(config RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	if config.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + keyFunc(c)

		var count int
		var resetAt time.Time
		if l.redis != nil {
			var err error
			count, resetAt, err = l.checkRedis(c.Request.Context(), fullKey, config)
			if err != nil {
				logger.Log.Warn("rate limit redis error", "key_prefix", config.KeyPrefix, "error", err)
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = l.checkInMemory(fullKey, config)
			}
		} else {
			count, resetAt = l.checkInMemory(fullKey, config)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(l.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			l.audit.Log(c.Request.Context(), audit.Event{
				Event:        audit.EventRateLimitTriggered,
				SubjectType:  "ip",
				SubjectValue: c.ClientIP(),
				Details:      map[string]interface{}{"path": c.FullPath()},
			})
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

// checkRedis checks rate limit using Redis with atomic Lua script
func (l *RateLimiter) checkRedis(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rateLimitScript.Run(ctx, l.redis, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), l.now().Add(time.Duration(ttl) * time.Second), nil
}

func (l *RateLimiter) checkInMemory(key string, config RateLimitConfig) (int, time.Time) {
	now := l.now()
	entryI, _ := l.store.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(config.Window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(config.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}
