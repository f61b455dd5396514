package redis_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 只有持有 token 的人可以刪除, 避免 lock 過期後刪到別人的
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

/*
同一個 session 同時只允許一個 checkout
SET NX PX, ttl 到期自動釋放, 避免 process crash 後永遠鎖住
*/
type CheckoutGuardRepo struct {
	lockCache *redis.Client
	ttl       time.Duration
}

func NewCheckoutGuardRepo(lockCache *redis.Client, ttl time.Duration) *CheckoutGuardRepo {
	return &CheckoutGuardRepo{lockCache: lockCache, ttl: ttl}
}

func generateCheckoutLockKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s:lock", sessionID)
}

// Acquire 取得失敗時 ok 為 false, err 為 nil
func (r *CheckoutGuardRepo) Acquire(ctx context.Context, sessionID string) (token string, ok bool, err error) {
	token = uuid.New().String()
	ok, err = r.lockCache.SetNX(ctx, generateCheckoutLockKey(sessionID), token, r.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *CheckoutGuardRepo) Release(ctx context.Context, sessionID, token string) error {
	_, err := releaseLockScript.Run(ctx, r.lockCache, []string{generateCheckoutLockKey(sessionID)}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release checkout lock: %w", err)
	}
	return nil
}
