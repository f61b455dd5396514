package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"` // 預設 1
}

type SetCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

type CartCountResponse struct {
	CartCount int `json:"cart_count"`
}

type CartLineDTO struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	LineTotal     string `json:"line_total"`
	StockQuantity int    `json:"stock_quantity"`
	Available     bool   `json:"available"`
}

type PricingDTO struct {
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	ShippingFee string `json:"shipping_fee"`
	Total       string `json:"total"`
}

type CartViewResponse struct {
	CartCount int           `json:"cart_count"`
	Lines     []CartLineDTO `json:"lines"`
	Pricing   PricingDTO    `json:"pricing"`
}

func NewPricingDTO(b service.PriceBreakdown) PricingDTO {
	return PricingDTO{
		Subtotal:    b.Subtotal.StringFixed(2),
		Tax:         b.Tax.StringFixed(2),
		ShippingFee: b.Shipping.StringFixed(2),
		Total:       b.Total.StringFixed(2),
	}
}

func NewCartViewResponse(v *service.CartView) CartViewResponse {
	res := CartViewResponse{CartCount: v.Count, Lines: make([]CartLineDTO, 0, len(v.Lines)), Pricing: NewPricingDTO(v.Pricing)}
	for _, l := range v.Lines {
		res.Lines = append(res.Lines, CartLineDTO{
			ProductID:     l.ProductID,
			Name:          l.Name,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice.StringFixed(2),
			LineTotal:     l.LineTotal.StringFixed(2),
			StockQuantity: l.StockQuantity,
			Available:     l.Available,
		})
	}
	return res
}
