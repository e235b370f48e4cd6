package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis backed store when client is set and an
// in-memory one otherwise.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Idempotency keys stored in redis")
		return NewRedisIdempotencyStore(client, defaultKeyPrefix)
	}
	logger.Warn("Idempotency keys kept in memory; not shared across instances")
	return NewInMemoryIdempotencyStore()
}
