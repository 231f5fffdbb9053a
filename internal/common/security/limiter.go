package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// AttemptLimiter caps how often a key (a login email) may be tried.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisAttemptLimiter counts attempts in a fixed window shared by every
// API instance.
type RedisAttemptLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewRedisAttemptLimiter(rdb *redis.Client, max int, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{rdb: rdb, max: max, window: window, prefix: "login_attempts:"}
}

func (l *RedisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		// First hit opens the window.
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return n <= int64(l.max), nil
}

func (l *RedisAttemptLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.prefix+key).Err()
}

// MemoryAttemptLimiter is the single-process fallback used when no Redis
// is configured. Each key gets a token bucket holding max attempts that
// refills over window.
type MemoryAttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*attemptEntry
	max      int
	window   time.Duration
	now      func() time.Time
}

type attemptEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// pruneThreshold bounds the map before idle entries are swept.
const pruneThreshold = 1024

func NewMemoryAttemptLimiter(max int, window time.Duration) *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{
		limiters: make(map[string]*attemptEntry),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryAttemptLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.limiters) > pruneThreshold {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.window {
				delete(l.limiters, k)
			}
		}
	}

	e, ok := l.limiters[key]
	if !ok {
		every := rate.Every(l.window / time.Duration(l.max))
		e = &attemptEntry{limiter: rate.NewLimiter(every, l.max)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

func (l *MemoryAttemptLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
	return nil
}
