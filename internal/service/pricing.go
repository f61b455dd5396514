package service

import (
	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate     = decimal.RequireFromString("0.18")
	DefaultShippingFee = decimal.NewFromInt(500)
)

const amountScale = 2

type PriceLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type PriceBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

/*
計算訂單金額, 純計算不做 I/O
total = subtotal * (1 + taxRate) + shippingFee
total 只在最後 round 一次 (half-up, 2 位小數), tax 由 total 反推確保三者加總一致
*/
type PricingCalculator struct {
	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
}

func NewPricingCalculator(taxRate, shippingFee decimal.Decimal) *PricingCalculator {
	return &PricingCalculator{taxRate: taxRate, shippingFee: shippingFee}
}

func NewDefaultPricingCalculator() *PricingCalculator {
	return NewPricingCalculator(DefaultTaxRate, DefaultShippingFee)
}

func (p *PricingCalculator) TaxRate() decimal.Decimal {
	return p.taxRate
}

func (p *PricingCalculator) ShippingFee() decimal.Decimal {
	return p.shippingFee
}

func (p *PricingCalculator) Subtotal(lines ...PriceLine) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

func zeroBreakdown() PriceBreakdown {
	zero := decimal.Zero.Round(amountScale)
	return PriceBreakdown{Subtotal: zero, Tax: zero, Shipping: zero, Total: zero}
}

func (p *PricingCalculator) ComputeTotal(lines ...PriceLine) PriceBreakdown {
	subtotal := p.Subtotal(lines...)
	total := subtotal.Mul(decimal.NewFromInt(1).Add(p.taxRate)).Add(p.shippingFee).Round(amountScale)
	subtotal = subtotal.Round(amountScale)
	shipping := p.shippingFee.Round(amountScale)

	return PriceBreakdown{
		Subtotal: subtotal,
		Tax:      total.Sub(subtotal).Sub(shipping),
		Shipping: shipping,
		Total:    total,
	}
}
