package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// CheckoutRepo 寫入訂單與扣庫存在同一個 transaction
type CheckoutRepo struct {
	db     *DbDao
	orders *OrderRepo
	ledger *StockLedger
}

func NewCheckoutRepo(db *DbDao, orders *OrderRepo, ledger *StockLedger) *CheckoutRepo {
	return &CheckoutRepo{db: db, orders: orders, ledger: ledger}
}

// CommitOrder ctx 到期時 tx 會被 rollback
func (c *CheckoutRepo) CommitOrder(ctx context.Context, order *model.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := c.orders.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}
		return c.ledger.ReserveAndDecrementTx(ctx, tx, order.Lines())
	})
}
