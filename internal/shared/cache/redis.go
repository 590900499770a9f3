package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastorder/server/internal/shared/config"
	"github.com/redis/go-redis/v9"
)

// Addrs splits the configured address list. A single entry yields a plain
// client, several yield a cluster client.
func Addrs(cfg *config.RedisConfig) []string {
	var addrs []string
	for _, a := range strings.Split(cfg.Address, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// NewRedisClient connects to Redis and pings it within the dial timeout.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (redis.UniversalClient, error) {
	addrs := Addrs(cfg)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis: no address configured")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return client, nil
}

// Close closes the Redis client.
func Close(client redis.UniversalClient) error {
	return client.Close()
}
