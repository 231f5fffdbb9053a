package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/platform/config"
)

// ConnectRedis returns nil, nil when no REDIS_ADDR is configured; callers
// fall back to in-process state in that case.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
