package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore 멱등성 키 저장소
type IdempotencyStore interface {
	// Reserve 키를 예약 (이미 존재하면 false)
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release 키 해제
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore SETNX 기반 멱등성 저장소
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

func NewIdempotencyStore(client *redis.Client, prefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullKey := s.fullKey(key)
	ok, err := s.client.SetNX(ctx, fullKey, "1", ttl).Result()
	if err != nil {
		logger.Error("Failed to reserve idempotency key", err, map[string]interface{}{
			"key": fullKey,
		})
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	logger.Debug("Idempotency key reserve attempted", map[string]interface{}{
		"key":      fullKey,
		"reserved": ok,
	})
	return ok, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
