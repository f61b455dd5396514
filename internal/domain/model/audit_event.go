package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuditKind string

const (
	AuditOrderCreated   AuditKind = "ORDER_CREATED"
	AuditStockReleased  AuditKind = "STOCK_RELEASED"
	AuditCheckoutFailed AuditKind = "CHECKOUT_FAILED"
)

type AuditEvent struct {
	EventID   string    `json:"event_id"`
	Kind      AuditKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Payload   any       `json:"payload"`
}

func NewAuditEvent(kind AuditKind, payload any) *AuditEvent {
	return &AuditEvent{
		EventID:   uuid.New().String(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []Line          `json:"lines"`
}

type StockReleasedPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	NewStock  int   `json:"new_stock"`
}

type CheckoutFailedPayload struct {
	UserID    int64  `json:"user_id"`
	Code      string `json:"code"`
	ProductID int64  `json:"product_id,omitempty"`
}
