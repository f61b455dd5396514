package handler

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CartUseCase interface {
	Add(ctx context.Context, sess model.Session, productID int64, delta int, idempotencyKey string) (int, error)
	SetQuantity(ctx context.Context, sess model.Session, productID int64, qty int) (int, error)
	Remove(ctx context.Context, sess model.Session, productID int64) (int, error)
	Count(ctx context.Context, sess model.Session) (int, error)
	Clear(ctx context.Context, sess model.Session) error
	View(ctx context.Context, sess model.Session) (*service.CartView, error)
}

type CheckoutUseCase interface {
	Checkout(ctx context.Context, sess model.Session, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

type OrderUseCase interface {
	GetOrder(ctx context.Context, sess model.Session, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, sess model.Session) ([]model.Order, error)
}

type InventoryUseCase interface {
	Restock(ctx context.Context, productID int64, quantity int) (int, error)
}

var (
	_ CartUseCase      = (*service.CartService)(nil)
	_ CheckoutUseCase  = (*service.CheckoutService)(nil)
	_ OrderUseCase     = (*service.OrderService)(nil)
	_ InventoryUseCase = (*service.InventoryService)(nil)
)
