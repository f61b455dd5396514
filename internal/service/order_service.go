package service

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type OrderService struct {
	orders OrderReader
}

func NewOrderService(orders OrderReader) *OrderService {
	if orders == nil {
		panic("OrderService dependency orders is nil")
	}
	return &OrderService{orders: orders}
}

// GetOrder 只能查自己的訂單, 別人的訂單一律回 NotFound
func (o *OrderService) GetOrder(ctx context.Context, sess model.Session, orderID string) (*model.Order, error) {
	if !sess.Authenticated() {
		return nil, apperr.ErrUnauthorized
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.InvalidArgument("order id is required")
	}

	order, err := o.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}
	if order.UserID != sess.UserID {
		return nil, apperr.New(apperr.CodeNotFound, "order not found")
	}
	return order, nil
}

func (o *OrderService) ListOrders(ctx context.Context, sess model.Session) ([]model.Order, error) {
	if !sess.Authenticated() {
		return nil, apperr.ErrUnauthorized
	}
	orders, err := o.orders.GetOrdersByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}
	return orders, nil
}
