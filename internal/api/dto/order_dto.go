package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

type CheckoutResponse struct {
	OrderID     string     `json:"order_id"`
	TotalAmount string     `json:"total_amount"`
	Pricing     PricingDTO `json:"pricing"`
}

func NewCheckoutResponse(r *service.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		OrderID:     r.OrderID,
		TotalAmount: r.Total.StringFixed(2),
		Pricing:     NewPricingDTO(r.Pricing),
	}
}

type OrderItemDTO struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderDTO struct {
	OrderID         string         `json:"order_id"`
	Status          string         `json:"status"`
	SubtotalAmount  string         `json:"subtotal_amount"`
	TaxAmount       string         `json:"tax_amount"`
	ShippingFee     string         `json:"shipping_fee"`
	TotalAmount     string         `json:"total_amount"`
	ShippingAddress string         `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
	CreatedAt       time.Time      `json:"created_at"`
	Items           []OrderItemDTO `json:"items"`
}

func NewOrderDTO(o *model.Order) OrderDTO {
	res := OrderDTO{
		OrderID:         o.OrderID,
		Status:          string(o.Status),
		SubtotalAmount:  o.SubtotalAmount.StringFixed(2),
		TaxAmount:       o.TaxAmount.StringFixed(2),
		ShippingFee:     o.ShippingFee.StringFixed(2),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		Items:           make([]OrderItemDTO, 0, len(o.OrderItems)),
	}
	for _, item := range o.OrderItems {
		res.Items = append(res.Items, OrderItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	return res
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type RestockResponse struct {
	ProductID     int64 `json:"product_id"`
	StockQuantity int   `json:"stock_quantity"`
}
