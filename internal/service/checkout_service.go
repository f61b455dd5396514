package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const DefaultCheckoutTxTimeout = 5 * time.Second

type CheckoutConfig struct {
	TxTimeout            time.Duration
	MaxConcurrentLookups int
}

type CheckoutRequest struct {
	ShippingAddress string
	PaymentMethod   string
}

type CheckoutResult struct {
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total_amount"`
	Pricing PriceBreakdown  `json:"pricing"`
}

/*
cart -> order
Idle -> Validating -> Pricing -> Committing -> Completed
Validating/Committing 失敗進入 Aborted, 購物車不動
完成後只從購物車扣掉已下單的品項
寫訂單與扣庫存在同一個 transaction, 超時整筆 rollback
*/
type CheckoutService struct {
	products  ProductReader
	committer OrderCommitter
	carts     CartStore
	guard     CheckoutGuard
	pricing   *PricingCalculator
	audit     AuditRecorder
	cfg       CheckoutConfig
	logger    *zerolog.Logger
	newID     func() string
}

func NewCheckoutService(
	products ProductReader,
	committer OrderCommitter,
	carts CartStore,
	guard CheckoutGuard,
	pricing *PricingCalculator,
	audit AuditRecorder,
	cfg CheckoutConfig,
	logger *zerolog.Logger,
) *CheckoutService {
	if products == nil {
		panic("CheckoutService dependency products is nil")
	}
	if committer == nil {
		panic("CheckoutService dependency committer is nil")
	}
	if carts == nil {
		panic("CheckoutService dependency carts is nil")
	}
	if guard == nil {
		panic("CheckoutService dependency guard is nil")
	}
	if pricing == nil {
		panic("CheckoutService dependency pricing is nil")
	}
	if audit == nil {
		panic("CheckoutService dependency audit is nil")
	}
	if logger == nil {
		panic("CheckoutService dependency logger is nil")
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = DefaultCheckoutTxTimeout
	}
	return &CheckoutService{
		products:  products,
		committer: committer,
		carts:     carts,
		guard:     guard,
		pricing:   pricing,
		audit:     audit,
		cfg:       cfg,
		logger:    logger,
		newID:     func() string { return uuid.New().String() },
	}
}

func (c *CheckoutService) Checkout(ctx context.Context, sess model.Session, req CheckoutRequest) (*CheckoutResult, error) {
	if !sess.Authenticated() {
		return nil, apperr.ErrUnauthorized
	}

	token, ok, err := c.guard.Acquire(ctx, sess.SessionID)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}
	if !ok {
		return nil, apperr.ErrCheckoutInProgress
	}
	defer func() {
		if err := c.guard.Release(context.WithoutCancel(ctx), sess.SessionID, token); err != nil {
			c.logger.Warn().Err(err).Str("session_id", sess.SessionID).Msg("failed to release checkout lock")
		}
	}()

	cart, err := c.carts.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, apperr.StorageFailure(err)
	}
	if cart.IsEmpty() {
		return nil, apperr.ErrEmptyCart
	}

	log := c.logger.With().Str("session_id", sess.SessionID).Int64("user_id", sess.UserID).Logger()
	lines := cart.Lines()
	run := newCheckoutRun()
	result, err := c.run(ctx, run, sess, lines, req, &log)
	if err != nil {
		log.Warn().Err(err).Str("state", run.trail[len(run.trail)-2].String()).Msg("checkout aborted")
		c.audit.Record(ctx, model.AuditCheckoutFailed, model.CheckoutFailedPayload{
			UserID:    sess.UserID,
			Code:      string(apperr.CodeOf(err)),
			ProductID: apperr.ProductIDOf(err),
		})
		return nil, err
	}

	// 只扣掉已下單的數量, 下單期間新加入的品項保留
	// 訂單已經 commit, 失敗只記 log
	if err := c.carts.Consume(context.WithoutCancel(ctx), sess.SessionID, lines); err != nil {
		log.Error().Err(err).Str("order_id", result.OrderID).Msg("failed to clear cart after checkout")
	}
	return result, nil
}

func (c *CheckoutService) run(ctx context.Context, run *checkoutRun, sess model.Session, lines []model.Line, req CheckoutRequest, log *zerolog.Logger) (*CheckoutResult, error) {
	run.to(CheckoutValidating)
	snapshot, err := snapshotProducts(ctx, c.products, lines, c.cfg.MaxConcurrentLookups)
	if err != nil {
		return nil, run.abort(apperr.StorageFailure(err))
	}
	for _, line := range lines {
		p := snapshot[line.ProductID]
		if !p.IsActive() {
			return nil, run.abort(apperr.ProductUnavailable(line.ProductID))
		}
		if p.StockQuantity < line.Quantity {
			return nil, run.abort(apperr.InsufficientStock(line.ProductID))
		}
	}

	run.to(CheckoutPricing)
	priced := make([]PriceLine, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, PriceLine{UnitPrice: snapshot[line.ProductID].Price, Quantity: line.Quantity})
	}
	breakdown := c.pricing.ComputeTotal(priced...)
	order := c.buildOrder(sess, lines, snapshot, breakdown, req)
	log.Debug().Str("order_id", order.OrderID).Str("total", breakdown.Total.StringFixed(2)).Msg("checkout priced")

	run.to(CheckoutCommitting)
	if err := c.commit(ctx, order); err != nil {
		return nil, run.abort(err)
	}

	run.to(CheckoutCompleted)
	log.Info().Str("order_id", order.OrderID).Str("total", breakdown.Total.StringFixed(2)).Msg("order created")
	c.audit.Record(ctx, model.AuditOrderCreated, model.OrderCreatedPayload{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Lines:       lines,
	})
	return &CheckoutResult{OrderID: order.OrderID, Total: breakdown.Total, Pricing: breakdown}, nil
}

func (c *CheckoutService) commit(ctx context.Context, order *model.Order) error {
	commitCtx, cancel := context.WithTimeout(ctx, c.cfg.TxTimeout)
	defer cancel()

	err := c.committer.CommitOrder(commitCtx, order)
	if err == nil {
		return nil
	}
	if code := apperr.CodeOf(err); code != apperr.CodeUnknown {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(commitCtx.Err(), context.DeadlineExceeded) {
		return apperr.CheckoutTimeout(err)
	}
	return apperr.StorageFailure(err)
}

func (c *CheckoutService) buildOrder(sess model.Session, lines []model.Line, snapshot map[int64]*model.Product, b PriceBreakdown, req CheckoutRequest) *model.Order {
	orderID := c.newID()
	order := &model.Order{
		OrderID:         orderID,
		UserID:          sess.UserID,
		SubtotalAmount:  b.Subtotal,
		TaxAmount:       b.Tax,
		ShippingFee:     b.Shipping,
		TotalAmount:     b.Total,
		Status:          model.OrderStatusPending,
		ShippingAddress: orDefault(req.ShippingAddress, model.DefaultShippingAddress),
		PaymentMethod:   orDefault(req.PaymentMethod, model.DefaultPaymentMethod),
		CreatedAt:       time.Now().UTC(),
		OrderItems:      make([]model.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     snapshot[line.ProductID].Price,
		})
	}
	return order
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
