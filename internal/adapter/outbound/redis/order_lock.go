package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/fastorder/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const orderLockKeyPrefix = "order:lock:"

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OrderLockConfig holds distributed lock timings.
type OrderLockConfig struct {
	// TTL bounds how long a crashed holder can block an order.
	TTL time.Duration
	// RetryInterval is the wait between acquisition attempts.
	RetryInterval time.Duration
}

// DefaultOrderLockConfig returns default lock timings.
func DefaultOrderLockConfig() *OrderLockConfig {
	return &OrderLockConfig{
		TTL:           10 * time.Second,
		RetryInterval: 25 * time.Millisecond,
	}
}

// orderLocker implements outbound.OrderLockerPort across processes.
type orderLocker struct {
	client redis.UniversalClient
	config *OrderLockConfig
	logger *zap.Logger
}

// NewOrderLocker creates a Redis-backed order locker.
func NewOrderLocker(client redis.UniversalClient, config *OrderLockConfig, logger *zap.Logger) outbound.OrderLockerPort {
	if config == nil {
		config = DefaultOrderLockConfig()
	}
	return &orderLocker{client: client, config: config, logger: logger}
}

func (l *orderLocker) Lock(ctx context.Context, orderCode int64) (func(), error) {
	key := fmt.Sprintf("%s%d", orderLockKeyPrefix, orderCode)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.config.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire order lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.config.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// Release ignores cancellation of the caller context.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release order lock", zap.Int64("order_code", orderCode), zap.Error(err))
		}
	}, nil
}
