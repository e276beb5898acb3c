package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Anmirazik/ev-server/config"
	"github.com/Anmirazik/ev-server/domain/service"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
	"github.com/Anmirazik/ev-server/shared/types"
)

// releaseScript deletes the lock key only while the caller still holds
// it, so a lease that expired and was re-acquired elsewhere is never
// deleted by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// RedisLockCoordinator implements service.LockCoordinator using Redis
// leases. A lock is a key holding a per-acquisition token with a TTL,
// taken with SET NX.
type RedisLockCoordinator struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	logger    *logging.Logger
	metrics   *metrics.Collector
}

// NewRedisLockCoordinator connects to Redis and verifies the connection
func NewRedisLockCoordinator(cfg config.RedisConfig, ttl time.Duration, logger *logging.Logger, metrics *metrics.Collector) (*RedisLockCoordinator, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.Database,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConnections,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, common.WrapError(err, common.ErrCodeExternalService, "failed to connect to Redis")
	}

	logger.Info("Redis lock coordinator initialized",
		logging.Strings("addresses", cfg.Addresses),
		logging.Duration("lock_ttl", ttl),
	)

	return &RedisLockCoordinator{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       ttl,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Acquire attempts to take the lock for the tenant and purpose. It
// returns (nil, nil) when another holder already has it.
func (c *RedisLockCoordinator) Acquire(ctx context.Context, tenantID types.TenantID, purpose string) (*service.Lock, error) {
	key := c.buildKey(tenantID, purpose)
	token := uuid.NewString()

	acquired, err := c.client.SetNX(ctx, key, token, c.ttl).Result()
	if err != nil {
		c.metrics.RecordLockOperation("acquire", "error")
		return nil, common.WrapError(err, common.ErrCodeExternalService, "failed to acquire lock")
	}

	if !acquired {
		c.metrics.RecordLockOperation("acquire", "held")
		c.logger.Debug("Lock held elsewhere",
			logging.String("lock_key", key),
			logging.String("tenant_id", tenantID.String()),
		)
		return nil, nil
	}

	c.metrics.RecordLockOperation("acquire", "acquired")
	c.logger.Debug("Lock acquired",
		logging.String("lock_key", key),
		logging.String("tenant_id", tenantID.String()),
	)

	return &service.Lock{
		Key:        key,
		Token:      token,
		TenantID:   tenantID,
		Purpose:    purpose,
		AcquiredAt: time.Now().UTC(),
		TTL:        c.ttl,
	}, nil
}

// Release releases a previously acquired lock. A lease that has already
// lapsed or been released is not an error.
func (c *RedisLockCoordinator) Release(ctx context.Context, lock *service.Lock) error {
	if lock == nil {
		return nil
	}

	released, err := releaseScript.Run(ctx, c.client, []string{lock.Key}, lock.Token).Int()
	if err != nil {
		c.metrics.RecordLockOperation("release", "error")
		return common.WrapError(err, common.ErrCodeExternalService, "failed to release lock")
	}

	if released == 0 {
		// The lease expired before we got here, possibly taken over
		c.metrics.RecordLockOperation("release", "expired")
		c.logger.Warn("Lock was no longer held at release",
			logging.String("lock_key", lock.Key),
			logging.String("tenant_id", lock.TenantID.String()),
		)
		return nil
	}

	c.metrics.RecordLockOperation("release", "released")
	c.logger.Debug("Lock released", logging.String("lock_key", lock.Key))

	return nil
}

// Ping verifies the Redis connection is still alive
func (c *RedisLockCoordinator) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return common.WrapError(err, common.ErrCodeExternalService, "Redis ping failed")
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisLockCoordinator) Close() error {
	return c.client.Close()
}

func (c *RedisLockCoordinator) buildKey(tenantID types.TenantID, purpose string) string {
	return fmt.Sprintf("%slock:%s:%s", c.keyPrefix, tenantID.String(), purpose)
}
