package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// BalanceCache 잔액 조회용 단기 캐시 (화면 표시 전용)
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

// Get decodes the cached value into dest and reports whether it was present.
func (c *BalanceCache) Get(ctx context.Context, phone string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, balanceKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Warn("Failed to read balance cache", map[string]interface{}{
			"error": err.Error(),
		})
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached balance: %w", err)
	}
	return true, nil
}

func (c *BalanceCache) Set(ctx context.Context, phone string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode balance: %w", err)
	}
	return c.client.Set(ctx, balanceKey(phone), raw, c.ttl).Err()
}

func (c *BalanceCache) Invalidate(ctx context.Context, phone string) error {
	return c.client.Del(ctx, balanceKey(phone)).Err()
}

func balanceKey(phone string) string {
	return fmt.Sprintf("balance:%s", phone)
}
