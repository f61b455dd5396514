package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// PostgresStore 組合 gorm 各 repo, 對 service 提供單一 store
type PostgresStore struct {
	*ProductDBRepo
	*StockLedger
	*OrderRepo
	checkout *CheckoutRepo
	dao      *DbDao
}

func NewPostgresStore(dao *DbDao) *PostgresStore {
	products := NewProductDBRepo(dao)
	ledger := NewStockLedger(dao)
	orders := NewOrderRepo(dao)
	return &PostgresStore{
		ProductDBRepo: products,
		StockLedger:   ledger,
		OrderRepo:     orders,
		checkout:      NewCheckoutRepo(dao, orders, ledger),
		dao:           dao,
	}
}

func (s *PostgresStore) CommitOrder(ctx context.Context, order *model.Order) error {
	return s.checkout.CommitOrder(ctx, order)
}

func (s *PostgresStore) Close() error {
	return s.dao.Close()
}
