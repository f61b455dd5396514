package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// ProductReader 不存在時回傳 apperr NotFound
type ProductReader interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
}

type StockLedger interface {
	// ReserveAndDecrement 全部扣減成功或全部不動
	ReserveAndDecrement(ctx context.Context, lines []model.Line) error
	Release(ctx context.Context, lines []model.Line) error
}

type OrderCommitter interface {
	// CommitOrder 寫入 order/order items 與扣庫存在同一個 transaction
	CommitOrder(ctx context.Context, order *model.Order) error
}

type OrderReader interface {
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]model.Order, error)
}

// Store postgres 與 memory 兩種實作
type Store interface {
	ProductReader
	StockLedger
	OrderCommitter
	OrderReader
}

// CartStore 每次只異動單一品項, 不整份覆寫
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*model.Cart, error)
	// AddLine 增加後超過 limit 時 clamp 到 limit, 回傳新數量與品項數
	AddLine(ctx context.Context, sessionID string, productID int64, delta, limit int) (quantity int, count int, err error)
	// SetLine qty <= 0 時移除
	SetLine(ctx context.Context, sessionID string, productID int64, qty int) (count int, err error)
	RemoveLine(ctx context.Context, sessionID string, productID int64) (count int, err error)
	// Consume 扣掉已下單的數量, 歸零的品項移除
	Consume(ctx context.Context, sessionID string, lines []model.Line) error
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutGuard interface {
	Acquire(ctx context.Context, sessionID string) (token string, ok bool, err error)
	Release(ctx context.Context, sessionID, token string) error
}

type IdempotencyStore interface {
	Remember(ctx context.Context, scope, key string) (bool, error)
	Forget(ctx context.Context, scope, key string) error
}

// AuditRecorder fire-and-forget
type AuditRecorder interface {
	Record(ctx context.Context, kind model.AuditKind, payload any)
}
