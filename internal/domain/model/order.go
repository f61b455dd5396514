package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // 待處理
	OrderStatusShipped   OrderStatus = "shipped"   // 已出貨
	OrderStatusDelivered OrderStatus = "delivered" // 已送達
	OrderStatusCancelled OrderStatus = "cancelled" // 已取消
)

const (
	DefaultShippingAddress = "pending"
	DefaultPaymentMethod   = "cash_on_delivery"
)

// Order 建立後除了 status 之外不再異動
type Order struct {
	OrderID         string          `gorm:"primaryKey;type:varchar(64)" json:"order_id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	SubtotalAmount  decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"subtotal_amount"`
	TaxAmount       decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"tax_amount"`
	ShippingFee     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"shipping_fee"`
	TotalAmount     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"total_amount"`
	Status          OrderStatus     `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	PaymentMethod   string          `gorm:"type:varchar(64);not null" json:"payment_method"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}

// OrderItem 與 Order 同一個 transaction 建立, price 為下單當下的單價
type OrderItem struct {
	OrderID   string          `gorm:"primaryKey;type:varchar(64)" json:"order_id"`
	ProductID int64           `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
}

// Lines 轉成庫存扣減用的 line
func (o *Order) Lines() []Line {
	lines := make([]Line, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		lines = append(lines, Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
