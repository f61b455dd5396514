package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product 由商品管理維護, checkout 只讀取 price/stock/status, 庫存只能經由 stock ledger 異動
type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0" json:"stock_quantity"`
	Status        ProductStatus   `gorm:"type:varchar(16);not null;default:active;index" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"null" json:"updated_at"`
}

func (p *Product) IsActive() bool {
	return p != nil && p.Status == ProductStatusActive
}
