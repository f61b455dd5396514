package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Kind    model.AuditKind
	Payload any
}

type recordingAudit struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingAudit) Record(ctx context.Context, kind model.AuditKind, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Kind: kind, Payload: payload})
}

func (r *recordingAudit) kinds(kind model.AuditKind) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// blockingCommitter 一直等到 ctx 結束, 模擬卡住的 transaction
type blockingCommitter struct{}

func (blockingCommitter) CommitOrder(ctx context.Context, order *model.Order) error {
	<-ctx.Done()
	return ctx.Err()
}

type errCommitter struct{ err error }

func (e errCommitter) CommitOrder(ctx context.Context, order *model.Order) error {
	return e.err
}

// failingConsumeCarts 結帳後扣購物車一定失敗
type failingConsumeCarts struct {
	CartStore
	err error
}

func (f failingConsumeCarts) Consume(ctx context.Context, sessionID string, lines []model.Line) error {
	return f.err
}

type fixture struct {
	mr       *miniredis.Miniredis
	client   *redis.Client
	store    *memory.Store
	carts    *redis_repo.CartRepo
	guard    *redis_repo.CheckoutGuardRepo
	idem     *redis_repo.IdempotencyRepo
	audit    *recordingAudit
	logger   *zerolog.Logger
	pricing  *PricingCalculator
	cart     *CartService
	checkout *CheckoutService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zerolog.New(io.Discard)
	f := &fixture{
		mr:      mr,
		client:  client,
		store:   memory.NewStore(),
		carts:   redis_repo.NewCartRepo(client, time.Hour),
		guard:   redis_repo.NewCheckoutGuardRepo(client, 30*time.Second),
		idem:    redis_repo.NewIdempotencyRepo(client, time.Minute),
		audit:   &recordingAudit{},
		logger:  &logger,
		pricing: NewDefaultPricingCalculator(),
	}
	f.cart = NewCartService(f.store, f.carts, f.idem, f.pricing, f.logger)
	f.checkout = f.newCheckout(f.store, f.carts, CheckoutConfig{TxTimeout: time.Second})
	return f
}

func (f *fixture) newCheckout(committer OrderCommitter, carts CartStore, cfg CheckoutConfig) *CheckoutService {
	return NewCheckoutService(f.store, committer, carts, f.guard, f.pricing, f.audit, cfg, f.logger)
}

func (f *fixture) product(t *testing.T, price string, stock int) int64 {
	t.Helper()
	p := &model.Product{
		Name:          "item",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Status:        model.ProductStatusActive,
	}
	require.NoError(t, f.store.CreateProduct(context.Background(), p))
	return p.ID
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func session(id string, userID int64) model.Session {
	return model.Session{SessionID: id, UserID: userID}
}
