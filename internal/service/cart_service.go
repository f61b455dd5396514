package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const cartAddScope = "cart-add"

type CartViewLine struct {
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	StockQuantity int             `json:"stock_quantity"`
	Available     bool            `json:"available"`
}

type CartView struct {
	Lines   []CartViewLine `json:"lines"`
	Count   int            `json:"count"`
	Pricing PriceBreakdown `json:"pricing"`
}

/*
購物車操作
庫存檢查只是當下快照, 不上鎖, 真正的保證在 checkout 的 stock ledger
*/
type CartService struct {
	products ProductReader
	carts    CartStore
	idem     IdempotencyStore
	pricing  *PricingCalculator
	logger   *zerolog.Logger
}

func NewCartService(products ProductReader, carts CartStore, idem IdempotencyStore, pricing *PricingCalculator, logger *zerolog.Logger) *CartService {
	if products == nil {
		panic("CartService dependency products is nil")
	}
	if carts == nil {
		panic("CartService dependency carts is nil")
	}
	if pricing == nil {
		panic("CartService dependency pricing is nil")
	}
	if logger == nil {
		panic("CartService dependency logger is nil")
	}
	return &CartService{products: products, carts: carts, idem: idem, pricing: pricing, logger: logger}
}

// Add 數量超過庫存時 clamp 到目前庫存
// idempotencyKey 不為空時, 同一個 key 重送只回傳目前數量
func (s *CartService) Add(ctx context.Context, sess model.Session, productID int64, delta int, idempotencyKey string) (int, error) {
	if productID <= 0 {
		return 0, apperr.InvalidArgument("product id must be positive")
	}
	if delta <= 0 {
		return 0, apperr.InvalidArgument("quantity must be positive")
	}

	if idempotencyKey != "" && s.idem != nil {
		scope := cartAddScope + ":" + sess.SessionID
		first, err := s.idem.Remember(ctx, scope, idempotencyKey)
		if err != nil {
			return 0, apperr.StorageFailure(err)
		}
		if !first {
			s.logger.Debug().Str("session_id", sess.SessionID).Str("idempotency_key", idempotencyKey).Msg("duplicate cart add ignored")
			return s.Count(ctx, sess)
		}
		count, err := s.add(ctx, sess, productID, delta)
		if err != nil {
			if ferr := s.idem.Forget(context.WithoutCancel(ctx), scope, idempotencyKey); ferr != nil {
				s.logger.Warn().Err(ferr).Msg("failed to forget idempotency key")
			}
			return 0, err
		}
		return count, nil
	}
	return s.add(ctx, sess, productID, delta)
}

func (s *CartService) add(ctx context.Context, sess model.Session, productID int64, delta int) (int, error) {
	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product.StockQuantity <= 0 {
		return 0, apperr.OutOfStock(productID)
	}

	_, count, err := s.carts.AddLine(ctx, sess.SessionID, productID, delta, product.StockQuantity)
	if err != nil {
		return 0, apperr.StorageFailure(err)
	}
	return count, nil
}

// SetQuantity qty 為 0 等同移除, 不做 clamp
func (s *CartService) SetQuantity(ctx context.Context, sess model.Session, productID int64, qty int) (int, error) {
	if productID <= 0 {
		return 0, apperr.InvalidArgument("product id must be positive")
	}
	if qty < 0 {
		return 0, apperr.InvalidArgument("quantity must not be negative")
	}
	if qty == 0 {
		return s.Remove(ctx, sess, productID)
	}

	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if qty > product.StockQuantity {
		return 0, apperr.OutOfStock(productID)
	}

	count, err := s.carts.SetLine(ctx, sess.SessionID, productID, qty)
	if err != nil {
		return 0, apperr.StorageFailure(err)
	}
	return count, nil
}

// Remove 不存在時不做任何事
func (s *CartService) Remove(ctx context.Context, sess model.Session, productID int64) (int, error) {
	count, err := s.carts.RemoveLine(ctx, sess.SessionID, productID)
	if err != nil {
		return 0, apperr.StorageFailure(err)
	}
	return count, nil
}

func (s *CartService) Count(ctx context.Context, sess model.Session) (int, error) {
	cart, err := s.carts.Load(ctx, sess.SessionID)
	if err != nil {
		return 0, apperr.StorageFailure(err)
	}
	return cart.Count(), nil
}

func (s *CartService) Clear(ctx context.Context, sess model.Session) error {
	if err := s.carts.Clear(ctx, sess.SessionID); err != nil {
		return apperr.StorageFailure(err)
	}
	return nil
}

// View 試算金額, 已下架的商品不列入計算
func (s *CartService) View(ctx context.Context, sess model.Session) (*CartView, error) {
	cart, err := s.carts.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}

	lines := cart.Lines()
	snapshot, err := snapshotProducts(ctx, s.products, lines, defaultSnapshotConcurrency)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}

	view := &CartView{Lines: make([]CartViewLine, 0, len(lines)), Count: cart.Count()}
	priced := make([]PriceLine, 0, len(lines))
	for _, line := range lines {
		vl := CartViewLine{ProductID: line.ProductID, Quantity: line.Quantity}
		if p := snapshot[line.ProductID]; p.IsActive() {
			vl.Name = p.Name
			vl.UnitPrice = p.Price
			vl.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			vl.StockQuantity = p.StockQuantity
			vl.Available = p.StockQuantity >= line.Quantity
			priced = append(priced, PriceLine{UnitPrice: p.Price, Quantity: line.Quantity})
		}
		view.Lines = append(view.Lines, vl)
	}
	// 沒有可計價的品項時不收運費
	if len(priced) > 0 {
		view.Pricing = s.pricing.ComputeTotal(priced...)
	} else {
		view.Pricing = zeroBreakdown()
	}
	return view, nil
}

func (s *CartService) activeProduct(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}
	if !product.IsActive() {
		return nil, apperr.ProductNotFound(productID)
	}
	return product, nil
}
