package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

/*
庫存唯一真相來源
扣減只用條件式 UPDATE, 由 row lock 序列化同商品的併發扣減
不做 select 之後再 update
*/
type StockLedger struct {
	db *DbDao
}

func NewStockLedger(db *DbDao) *StockLedger {
	return &StockLedger{db: db}
}

// ReserveAndDecrement 全部成功或全部 rollback
func (l *StockLedger) ReserveAndDecrement(ctx context.Context, lines []model.Line) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.ReserveAndDecrementTx(ctx, tx, lines)
	})
}

// ReserveAndDecrementTx 在呼叫端的 transaction 內扣減
// 依 product id 順序處理, 回報第一個失敗的商品
func (l *StockLedger) ReserveAndDecrementTx(ctx context.Context, tx *gorm.DB, lines []model.Line) error {
	for _, line := range model.SortLines(lines) {
		if line.Quantity <= 0 {
			return apperr.InvalidArgument("quantity for product %d must be positive", line.ProductID)
		}

		result := tx.WithContext(ctx).Model(&model.Product{}).
			Where("id = ? AND stock_quantity >= ? AND status = ?", line.ProductID, line.Quantity, model.ProductStatusActive).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to decrement stock of product %d: %w", line.ProductID, result.Error)
		}
		if result.RowsAffected == 1 {
			continue
		}

		// 沒有更新到任何 row, 區分商品下架與庫存不足
		product, err := getProduct(ctx, tx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.ProductUnavailable(line.ProductID)
			}
			return err
		}
		if !product.IsActive() {
			return apperr.ProductUnavailable(line.ProductID)
		}
		return apperr.InsufficientStock(line.ProductID)
	}
	return nil
}

// Release 補回庫存, 用於補貨與補償
func (l *StockLedger) Release(ctx context.Context, lines []model.Line) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range model.SortLines(lines) {
			if line.Quantity <= 0 {
				return apperr.InvalidArgument("quantity for product %d must be positive", line.ProductID)
			}
			result := tx.WithContext(ctx).Model(&model.Product{}).
				Where("id = ?", line.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", line.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to release stock of product %d: %w", line.ProductID, result.Error)
			}
			if result.RowsAffected == 0 {
				return apperr.ProductNotFound(line.ProductID)
			}
		}
		return nil
	})
}
