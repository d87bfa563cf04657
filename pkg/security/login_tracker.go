package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-headhunter-backend/pkg/audit"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // Failed attempts before block (default: 5)
	AttemptWindow time.Duration // Time window for counting attempts (default: 15min)
	BlockDuration time.Duration // How long to block after max attempts (default: 15min)
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// Redis key patterns
const (
	failLoginPrefix    = "fail:login:user:"
	blockedLoginPrefix = "blocked:login:user:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds; returns the count after increment
var incrWithTTL = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

type memEntry struct {
	count   int
	resetAt time.Time
}

// LoginTracker counts failed logins per email and blocks the email once the
// limit is reached. Redis holds the counters when configured, process memory
// otherwise.
type LoginTracker struct {
	config LoginTrackerConfig
	redis  *goredis.Client
	audit  *audit.Logger

	mu       sync.Mutex
	failures map[string]memEntry
	blocks   map[string]time.Time
	now      func() time.Time
}

func NewLoginTracker(client *goredis.Client, config LoginTrackerConfig, auditLogger *audit.Logger) *LoginTracker {
	defaults := DefaultLoginTrackerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = defaults.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = defaults.BlockDuration
	}
	if auditLogger == nil {
		auditLogger = audit.Nop()
	}
	return &LoginTracker{
		config:   config,
		redis:    client,
		audit:    auditLogger,
		failures: make(map[string]memEntry),
		blocks:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// IsBlocked reports whether email is currently blocked
func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	if lt.redis != nil {
		exists, err := lt.redis.Exists(ctx, blockedLoginPrefix+email).Result()
		if err != nil {
			return false, fmt.Errorf("check login block: %w", err)
		}
		return exists > 0, nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	until, ok := lt.blocks[email]
	if !ok {
		return false, nil
	}
	if !lt.now().Before(until) {
		delete(lt.blocks, email)
		return false, nil
	}
	return true, nil
}

// RecordFailedAttempt counts a failed login and blocks the email when the
// limit is reached. Returns (blocked, attempts, error).
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email string) (bool, int, error) {
	var count int
	if lt.redis != nil {
		ttl := int(lt.config.AttemptWindow.Seconds())
		n, err := incrWithTTL.Run(ctx, lt.redis, []string{failLoginPrefix + email}, ttl).Int()
		if err != nil {
			return false, 0, fmt.Errorf("increment login failures: %w", err)
		}
		count = n
	} else {
		count = lt.incrementInMemory(email)
	}

	if count < lt.config.MaxAttempts {
		return false, count, nil
	}
	if err := lt.block(ctx, email); err != nil {
		return true, count, err
	}
	return true, count, nil
}

// ClearAttempts resets the failure counter after a successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	if lt.redis != nil {
		if err := lt.redis.Del(ctx, failLoginPrefix+email).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("clear login failures: %w", err)
		}
		return nil
	}

	lt.mu.Lock()
	delete(lt.failures, email)
	lt.mu.Unlock()
	return nil
}

func (lt *LoginTracker) incrementInMemory(email string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	entry, ok := lt.failures[email]
	if !ok || !now.Before(entry.resetAt) {
		entry = memEntry{resetAt: now.Add(lt.config.AttemptWindow)}
	}
	entry.count++
	lt.failures[email] = entry
	return entry.count
}

func (lt *LoginTracker) block(ctx context.Context, email string) error {
	if lt.redis != nil {
		if err := lt.redis.Set(ctx, blockedLoginPrefix+email, "1", lt.config.BlockDuration).Err(); err != nil {
			return fmt.Errorf("set login block: %w", err)
		}
	} else {
		lt.mu.Lock()
		lt.blocks[email] = lt.now().Add(lt.config.BlockDuration)
		delete(lt.failures, email)
		lt.mu.Unlock()
	}

	lt.audit.Log(ctx, audit.Event{
		Event:        audit.EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: email,
		Details:      map[string]interface{}{"block_minutes": int(lt.config.BlockDuration.Minutes())},
	})
	return nil
}
