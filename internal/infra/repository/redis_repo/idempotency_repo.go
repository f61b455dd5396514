package redis_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 記錄已處理過的 request key, 重送的 request 不會再次異動
type IdempotencyRepo struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewIdempotencyRepo(cache *redis.Client, ttl time.Duration) *IdempotencyRepo {
	return &IdempotencyRepo{cache: cache, ttl: ttl}
}

func generateIdempotencyKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// Remember 第一次看到 key 回傳 true
func (r *IdempotencyRepo) Remember(ctx context.Context, scope, key string) (bool, error) {
	first, err := r.cache.SetNX(ctx, generateIdempotencyKey(scope, key), time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set idempotency key: %w", err)
	}
	return first, nil
}

// Forget 處理失敗時呼叫, 讓同一個 key 可以重試
func (r *IdempotencyRepo) Forget(ctx context.Context, scope, key string) error {
	if err := r.cache.Del(ctx, generateIdempotencyKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete idempotency key: %w", err)
	}
	return nil
}
