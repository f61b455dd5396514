package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CheckoutServiceSuite struct {
	suite.Suite
	f    *fixture
	sess model.Session
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.sess = session("sid-checkout", 42)
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) fill(sess model.Session, lines ...model.Line) {
	for _, l := range lines {
		_, err := s.f.cart.SetQuantity(context.Background(), sess, l.ProductID, l.Quantity)
		s.Require().NoError(err)
	}
}

func (s *CheckoutServiceSuite) TestEndToEnd() {
	ctx := context.Background()
	a := s.f.product(s.T(), "1000", 5)
	b := s.f.product(s.T(), "500", 5)
	s.fill(s.sess, model.Line{ProductID: a, Quantity: 2}, model.Line{ProductID: b, Quantity: 1})

	result, err := s.f.checkout.Checkout(ctx, s.sess, CheckoutRequest{ShippingAddress: "221B Baker St"})
	s.Require().NoError(err)
	s.NotEmpty(result.OrderID)
	s.Equal("3450.00", result.Total.StringFixed(2))

	count, err := s.f.cart.Count(ctx, s.sess)
	s.Require().NoError(err)
	s.Zero(count)
	s.Equal(3, s.f.stock(s.T(), a))
	s.Equal(4, s.f.stock(s.T(), b))

	order, err := s.f.store.GetOrderByID(ctx, result.OrderID)
	s.Require().NoError(err)
	s.Equal(int64(42), order.UserID)
	s.Equal(model.OrderStatusPending, order.Status)
	s.Equal("221B Baker St", order.ShippingAddress)
	s.Equal(model.DefaultPaymentMethod, order.PaymentMethod)
	s.Len(order.OrderItems, 2)
	s.Equal("1000", order.OrderItems[0].Price.String())
	s.True(order.SubtotalAmount.Add(order.TaxAmount).Add(order.ShippingFee).Equal(order.TotalAmount))

	created := s.f.audit.kinds(model.AuditOrderCreated)
	s.Require().Len(created, 1)
	payload := created[0].Payload.(model.OrderCreatedPayload)
	s.Equal(result.OrderID, payload.OrderID)

	// lock 已釋放, 再結帳會因為購物車是空的失敗
	_, err = s.f.checkout.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.ErrEmptyCart)
}

func (s *CheckoutServiceSuite) TestUnauthorized() {
	id := s.f.product(s.T(), "10", 5)
	anon := session("sid-anon", 0)
	s.fill(anon, model.Line{ProductID: id, Quantity: 1})

	_, err := s.f.checkout.Checkout(context.Background(), anon, CheckoutRequest{})
	s.ErrorIs(err, apperr.ErrUnauthorized)
	s.Equal(5, s.f.stock(s.T(), id))
}

func (s *CheckoutServiceSuite) TestEmptyCart() {
	_, err := s.f.checkout.Checkout(context.Background(), s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.ErrEmptyCart)
	s.Empty(s.f.audit.kinds(model.AuditCheckoutFailed))
}

func (s *CheckoutServiceSuite) TestCheckoutInProgress() {
	ctx := context.Background()
	id := s.f.product(s.T(), "10", 5)
	s.fill(s.sess, model.Line{ProductID: id, Quantity: 1})

	token, ok, err := s.f.guard.Acquire(ctx, s.sess.SessionID)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.f.checkout.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.ErrCheckoutInProgress)
	s.True(apperr.IsTransient(err))

	s.Require().NoError(s.f.guard.Release(ctx, s.sess.SessionID, token))
	_, err = s.f.checkout.Checkout(ctx, s.sess, CheckoutRequest{})
	s.NoError(err)
}

func (s *CheckoutServiceSuite) TestProductBecameUnavailable() {
	ctx := context.Background()
	a := s.f.product(s.T(), "10", 5)
	b := s.f.product(s.T(), "10", 5)
	s.fill(s.sess, model.Line{ProductID: a, Quantity: 1}, model.Line{ProductID: b, Quantity: 1})
	s.Require().NoError(s.f.store.UpdateStatus(ctx, b, model.ProductStatusInactive))

	_, err := s.f.checkout.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.ProductUnavailable(b))

	count, _ := s.f.cart.Count(ctx, s.sess)
	s.Equal(2, count)
	s.Equal(5, s.f.stock(s.T(), a))

	failed := s.f.audit.kinds(model.AuditCheckoutFailed)
	s.Require().Len(failed, 1)
	s.Equal(string(apperr.CodeProductUnavailable), failed[0].Payload.(model.CheckoutFailedPayload).Code)
}

func (s *CheckoutServiceSuite) TestAtomicityOnInsufficientStock() {
	ctx := context.Background()
	a := s.f.product(s.T(), "10", 5)
	b := s.f.product(s.T(), "10", 2)
	s.fill(s.sess, model.Line{ProductID: a, Quantity: 2}, model.Line{ProductID: b, Quantity: 2})

	// 另一個買家先買走 b
	s.Require().NoError(s.f.store.ReserveAndDecrement(ctx, []model.Line{{ProductID: b, Quantity: 1}}))

	_, err := s.f.checkout.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.InsufficientStock(b))
	s.Equal(5, s.f.stock(s.T(), a))
	s.Equal(1, s.f.stock(s.T(), b))

	orders, err := s.f.store.GetOrdersByUserID(ctx, s.sess.UserID)
	s.Require().NoError(err)
	s.Empty(orders)

	count, _ := s.f.cart.Count(ctx, s.sess)
	s.Equal(2, count)
}

func (s *CheckoutServiceSuite) TestLedgerRejectsAfterValidation() {
	ctx := context.Background()
	a := s.f.product(s.T(), "10", 3)
	s.fill(s.sess, model.Line{ProductID: a, Quantity: 3})

	// 驗證之後, commit 之前庫存被買走
	racing := committerFunc(func(ctx context.Context, order *model.Order) error {
		if err := s.f.store.ReserveAndDecrement(ctx, []model.Line{{ProductID: a, Quantity: 1}}); err != nil {
			return err
		}
		return s.f.store.CommitOrder(ctx, order)
	})
	svc := s.f.newCheckout(racing, s.f.carts, CheckoutConfig{TxTimeout: time.Second})

	_, err := svc.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.InsufficientStock(a))
	s.Equal(2, s.f.stock(s.T(), a))
}

func (s *CheckoutServiceSuite) TestConcurrentLastUnit() {
	ctx := context.Background()
	id := s.f.product(s.T(), "10", 1)
	alice := session("sid-alice", 1)
	bob := session("sid-bob", 2)
	s.fill(alice, model.Line{ProductID: id, Quantity: 1})
	s.fill(bob, model.Line{ProductID: id, Quantity: 1})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, sess := range []model.Session{alice, bob} {
		wg.Add(1)
		go func(i int, sess model.Session) {
			defer wg.Done()
			_, errs[i] = s.f.checkout.Checkout(ctx, sess, CheckoutRequest{})
		}(i, sess)
	}
	wg.Wait()

	var success, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, apperr.ErrInsufficientStock):
			insufficient++
		}
	}
	s.Equal(1, success)
	s.Equal(1, insufficient)
	s.Equal(0, s.f.stock(s.T(), id))
}

func (s *CheckoutServiceSuite) TestNoOversellUnderLoad() {
	const stock, buyers = 5, 25
	ctx := context.Background()
	id := s.f.product(s.T(), "10", stock)

	sessions := make([]model.Session, buyers)
	for i := range sessions {
		sessions[i] = session("sid-load-"+string(rune('a'+i)), int64(i+1))
		s.fill(sessions[i], model.Line{ProductID: id, Quantity: 1})
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess model.Session) {
			defer wg.Done()
			if _, err := s.f.checkout.Checkout(ctx, sess, CheckoutRequest{}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(sess)
	}
	wg.Wait()

	s.Equal(stock, success)
	s.Equal(0, s.f.stock(s.T(), id))
}

func (s *CheckoutServiceSuite) TestTimeoutRollsBack() {
	ctx := context.Background()
	id := s.f.product(s.T(), "10", 5)
	s.fill(s.sess, model.Line{ProductID: id, Quantity: 1})

	svc := s.f.newCheckout(blockingCommitter{}, s.f.carts, CheckoutConfig{TxTimeout: 50 * time.Millisecond})
	_, err := svc.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.ErrCheckoutTimeout)
	s.True(apperr.IsTransient(err))

	s.Equal(5, s.f.stock(s.T(), id))
	count, _ := s.f.cart.Count(ctx, s.sess)
	s.Equal(1, count)

	// lock 已釋放
	_, ok, err := s.f.guard.Acquire(ctx, s.sess.SessionID)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *CheckoutServiceSuite) TestStorageFailureWrapped() {
	ctx := context.Background()
	id := s.f.product(s.T(), "10", 5)
	s.fill(s.sess, model.Line{ProductID: id, Quantity: 1})

	boom := errors.New("connection refused")
	svc := s.f.newCheckout(errCommitter{err: boom}, s.f.carts, CheckoutConfig{})
	_, err := svc.Checkout(ctx, s.sess, CheckoutRequest{})
	s.ErrorIs(err, apperr.ErrStorageFailure)
	s.ErrorIs(err, boom)
}

func (s *CheckoutServiceSuite) TestCartClearFailureDoesNotFailCheckout() {
	ctx := context.Background()
	id := s.f.product(s.T(), "10", 5)
	s.fill(s.sess, model.Line{ProductID: id, Quantity: 1})

	carts := failingConsumeCarts{CartStore: s.f.carts, err: errors.New("redis down")}
	svc := s.f.newCheckout(s.f.store, carts, CheckoutConfig{})
	result, err := svc.Checkout(ctx, s.sess, CheckoutRequest{})
	s.Require().NoError(err)
	s.NotEmpty(result.OrderID)
	s.Equal(4, s.f.stock(s.T(), id))
}

func (s *CheckoutServiceSuite) TestCartChangesDuringCommitAreKept() {
	ctx := context.Background()
	ordered := s.f.product(s.T(), "10", 10)
	later := s.f.product(s.T(), "20", 10)
	s.fill(s.sess, model.Line{ProductID: ordered, Quantity: 2})

	// commit 進行中另一個分頁又加了東西
	svc := s.f.newCheckout(committerFunc(func(ctx context.Context, order *model.Order) error {
		_, err := s.f.cart.Add(ctx, s.sess, later, 1, "")
		s.Require().NoError(err)
		_, err = s.f.cart.Add(ctx, s.sess, ordered, 3, "")
		s.Require().NoError(err)
		return s.f.store.CommitOrder(ctx, order)
	}), s.f.carts, CheckoutConfig{})

	result, err := svc.Checkout(ctx, s.sess, CheckoutRequest{})
	s.Require().NoError(err)

	order, err := s.f.store.GetOrderByID(ctx, result.OrderID)
	s.Require().NoError(err)
	s.Require().Len(order.OrderItems, 1)
	s.Equal(2, order.OrderItems[0].Quantity)

	cart, err := s.f.carts.Load(ctx, s.sess.SessionID)
	s.Require().NoError(err)
	s.Equal([]model.Line{
		{ProductID: ordered, Quantity: 3},
		{ProductID: later, Quantity: 1},
	}, cart.Lines())
}

type committerFunc func(ctx context.Context, order *model.Order) error

func (f committerFunc) CommitOrder(ctx context.Context, order *model.Order) error {
	return f(ctx, order)
}

func TestCheckoutStateTransitions(t *testing.T) {
	assert.True(t, CheckoutIdle.CanTransitionTo(CheckoutValidating))
	assert.False(t, CheckoutIdle.CanTransitionTo(CheckoutCommitting))
	assert.True(t, CheckoutValidating.CanTransitionTo(CheckoutAborted))
	assert.True(t, CheckoutPricing.CanTransitionTo(CheckoutAborted))
	assert.True(t, CheckoutCommitting.CanTransitionTo(CheckoutCompleted))
	assert.False(t, CheckoutCompleted.CanTransitionTo(CheckoutAborted))
	assert.False(t, CheckoutAborted.CanTransitionTo(CheckoutValidating))
	assert.True(t, CheckoutCompleted.Terminal())
	assert.Equal(t, "committing", CheckoutCommitting.String())

	run := newCheckoutRun()
	run.to(CheckoutValidating)
	run.to(CheckoutPricing)
	require.Panics(t, func() { run.to(CheckoutCompleted) })
	err := run.abort(apperr.ErrEmptyCart)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Equal(t, []CheckoutState{CheckoutIdle, CheckoutValidating, CheckoutPricing, CheckoutAborted}, run.trail)
}
