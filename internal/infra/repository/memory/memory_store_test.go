package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, stock int, status model.ProductStatus) int64 {
	t.Helper()
	p := &model.Product{Name: "p", Price: decimal.NewFromInt(100), StockQuantity: stock, Status: status}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p.ID
}

func TestReserveIsAllOrNothing(t *testing.T) {
	s := NewStore()
	a := seed(t, s, 5, model.ProductStatusActive)
	b := seed(t, s, 1, model.ProductStatusActive)

	err := s.ReserveAndDecrement(context.Background(), []model.Line{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 2}})
	require.ErrorIs(t, err, apperr.InsufficientStock(b))

	pa, _ := s.GetProduct(context.Background(), a)
	pb, _ := s.GetProduct(context.Background(), b)
	assert.Equal(t, 5, pa.StockQuantity)
	assert.Equal(t, 1, pb.StockQuantity)
}

func TestReserveDuplicateLinesUseCombinedQuantity(t *testing.T) {
	s := NewStore()
	id := seed(t, s, 5, model.ProductStatusActive)
	ctx := context.Background()

	err := s.ReserveAndDecrement(ctx, []model.Line{{ProductID: id, Quantity: 3}, {ProductID: id, Quantity: 3}})
	require.ErrorIs(t, err, apperr.InsufficientStock(id))
	p, _ := s.GetProduct(ctx, id)
	assert.Equal(t, 5, p.StockQuantity)

	require.NoError(t, s.ReserveAndDecrement(ctx, []model.Line{{ProductID: id, Quantity: 2}, {ProductID: id, Quantity: 3}}))
	p, _ = s.GetProduct(ctx, id)
	assert.Zero(t, p.StockQuantity)
}

func TestReserveReportsFirstFailingProduct(t *testing.T) {
	s := NewStore()
	a := seed(t, s, 0, model.ProductStatusActive)
	b := seed(t, s, 0, model.ProductStatusActive)

	err := s.ReserveAndDecrement(context.Background(), []model.Line{{ProductID: b, Quantity: 1}, {ProductID: a, Quantity: 1}})
	assert.Equal(t, a, apperr.ProductIDOf(err))
}

func TestReserveInactiveAndMissing(t *testing.T) {
	s := NewStore()
	off := seed(t, s, 10, model.ProductStatusInactive)

	err := s.ReserveAndDecrement(context.Background(), []model.Line{{ProductID: off, Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ProductUnavailable(off))

	err = s.ReserveAndDecrement(context.Background(), []model.Line{{ProductID: 999, Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ProductUnavailable(999))
}

func TestCommitOrderConcurrentNoOversell(t *testing.T) {
	s := NewStore()
	id := seed(t, s, 10, model.ProductStatusActive)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := &model.Order{
				OrderID:    decimal.NewFromInt(int64(i)).String(),
				UserID:     int64(i + 1),
				OrderItems: []model.OrderItem{{ProductID: id, Quantity: 1}},
			}
			if err := s.CommitOrder(context.Background(), order); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	p, _ := s.GetProduct(context.Background(), id)
	assert.Equal(t, 0, p.StockQuantity)
}

func TestCommitOrderCancelledContext(t *testing.T) {
	s := NewStore()
	id := seed(t, s, 1, model.ProductStatusActive)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.CommitOrder(ctx, &model.Order{OrderID: "x", OrderItems: []model.OrderItem{{ProductID: id, Quantity: 1}}})
	require.ErrorIs(t, err, context.Canceled)
	_, err = s.GetOrderByID(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOrdersAreCopies(t *testing.T) {
	s := NewStore()
	id := seed(t, s, 3, model.ProductStatusActive)
	order := &model.Order{OrderID: "o1", UserID: 7, OrderItems: []model.OrderItem{{OrderID: "o1", ProductID: id, Quantity: 1}}}
	require.NoError(t, s.CommitOrder(context.Background(), order))

	order.OrderItems[0].Quantity = 99
	got, err := s.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.OrderItems[0].Quantity)

	list, err := s.GetOrdersByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.GetOrdersByUserID(context.Background(), 8)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReleaseRestocks(t *testing.T) {
	s := NewStore()
	id := seed(t, s, 0, model.ProductStatusActive)
	require.NoError(t, s.Release(context.Background(), []model.Line{{ProductID: id, Quantity: 3}}))
	p, _ := s.GetProduct(context.Background(), id)
	assert.Equal(t, 3, p.StockQuantity)

	assert.ErrorIs(t, s.Release(context.Background(), []model.Line{{ProductID: 42, Quantity: 1}}), apperr.ErrNotFound)
	assert.ErrorIs(t, s.Release(context.Background(), []model.Line{{ProductID: id, Quantity: 0}}), apperr.ErrInvalidArgument)
}
