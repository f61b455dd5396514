package redis_repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// ARGV: product id, delta, limit, ttl(ms)
var addLineScript = redis.NewScript(`
	local key = KEYS[1]
	local field = ARGV[1]
	local delta = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local current = tonumber(redis.call('HGET', key, field) or "0")
	local updated = current + delta
	if updated > limit then
		updated = limit
	end
	if updated <= 0 then
		redis.call('HDEL', key, field)
		updated = 0
	else
		redis.call('HSET', key, field, updated)
	end

	local count = redis.call('HLEN', key)
	if ttl > 0 and count > 0 then
		redis.call('PEXPIRE', key, ttl)
	end
	return {updated, count}
`)

// ARGV: product id, quantity 成對
var consumeLinesScript = redis.NewScript(`
	local key = KEYS[1]
	for i = 1, #ARGV, 2 do
		local left = redis.call('HINCRBY', key, ARGV[i], -tonumber(ARGV[i + 1]))
		if left <= 0 then
			redis.call('HDEL', key, ARGV[i])
		end
	end
	return redis.call('HLEN', key)
`)

/*
購物車存在 session 底下, 一個 session 一個 hash
field: product id, value: quantity
TTL 為 sliding, 每次讀寫都會延長
每次異動只動單一品項, 同一個 session 併發的請求不會互相覆蓋
*/
type CartRepo struct {
	cartCache *redis.Client
	ttl       time.Duration
}

func NewCartRepo(cartCache *redis.Client, ttl time.Duration) *CartRepo {
	return &CartRepo{cartCache: cartCache, ttl: ttl}
}

func generateCartItemKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:items", sessionID)
}

// Load 不存在時回傳空購物車
func (r *CartRepo) Load(ctx context.Context, sessionID string) (*model.Cart, error) {
	itemsKey := generateCartItemKey(sessionID)

	items, err := r.cartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	parsed := make(map[int64]int, len(items))
	for field, quantityStr := range items {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q in cart: %w", field, err)
		}
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for product %s: %w", field, err)
		}
		parsed[productID] = quantity
	}

	if len(items) > 0 && r.ttl > 0 {
		if err := r.cartCache.PExpire(ctx, itemsKey, r.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to refresh cart ttl: %w", err)
		}
	}
	return model.NewCartFromItems(parsed), nil
}

// AddLine 原子增加單一商品數量, 結果超過 limit 時 clamp 到 limit
// 回傳該商品的新數量與購物車品項數
func (r *CartRepo) AddLine(ctx context.Context, sessionID string, productID int64, delta, limit int) (quantity int, count int, err error) {
	res, err := addLineScript.Run(ctx, r.cartCache, []string{generateCartItemKey(sessionID)},
		strconv.FormatInt(productID, 10), delta, limit, r.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to add cart item: %w", err)
	}
	return int(res[0]), int(res[1]), nil
}

// SetLine 直接覆寫單一商品數量, qty <= 0 時移除
func (r *CartRepo) SetLine(ctx context.Context, sessionID string, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return r.RemoveLine(ctx, sessionID, productID)
	}
	itemsKey := generateCartItemKey(sessionID)

	var hlen *redis.IntCmd
	_, err := r.cartCache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemsKey, strconv.FormatInt(productID, 10), qty)
		if r.ttl > 0 {
			pipe.PExpire(ctx, itemsKey, r.ttl)
		}
		hlen = pipe.HLen(ctx, itemsKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set cart item: %w", err)
	}
	return int(hlen.Val()), nil
}

// RemoveLine 不存在時不做任何事
func (r *CartRepo) RemoveLine(ctx context.Context, sessionID string, productID int64) (int, error) {
	itemsKey := generateCartItemKey(sessionID)

	var hlen *redis.IntCmd
	_, err := r.cartCache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, itemsKey, strconv.FormatInt(productID, 10))
		hlen = pipe.HLen(ctx, itemsKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return int(hlen.Val()), nil
}

// Consume 扣掉已經下單的數量, 扣完歸零的品項移除
// 下單期間新加入的品項或多加的數量會留在購物車
func (r *CartRepo) Consume(ctx context.Context, sessionID string, lines []model.Line) error {
	if len(lines) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(lines)*2)
	for _, line := range lines {
		args = append(args, strconv.FormatInt(line.ProductID, 10), line.Quantity)
	}
	if err := consumeLinesScript.Run(ctx, r.cartCache, []string{generateCartItemKey(sessionID)}, args...).Err(); err != nil {
		return fmt.Errorf("failed to consume cart items: %w", err)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	if err := r.cartCache.Del(ctx, generateCartItemKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
