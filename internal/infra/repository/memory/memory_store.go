package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

/*
單機版 store, STORE_DRIVER=memory 與測試使用
所有寫入在同一把鎖內完成, 驗證全部通過才套用, 與 postgres 版的 all-or-nothing 行為一致
*/
type Store struct {
	mu       sync.RWMutex
	products map[int64]*model.Product
	orders   map[string]*model.Order
	nextID   int64
}

func NewStore() *Store {
	return &Store{
		products: make(map[int64]*model.Product),
		orders:   make(map[string]*model.Order),
	}
}

// CreateProduct id 為 0 時自動配號
func (s *Store) CreateProduct(ctx context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == 0 {
		s.nextID++
		product.ID = s.nextID
	} else if product.ID > s.nextID {
		s.nextID = product.ID
	}
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, apperr.ProductNotFound(productID)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdateStatus(ctx context.Context, productID int64, status model.ProductStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return apperr.ProductNotFound(productID)
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ReserveAndDecrement(ctx context.Context, lines []model.Line) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserveLocked(lines)
}

func (s *Store) Release(ctx context.Context, lines []model.Line) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := model.SortLines(lines)
	for _, line := range sorted {
		if line.Quantity <= 0 {
			return apperr.InvalidArgument("quantity for product %d must be positive", line.ProductID)
		}
		if _, ok := s.products[line.ProductID]; !ok {
			return apperr.ProductNotFound(line.ProductID)
		}
	}
	now := time.Now().UTC()
	for _, line := range sorted {
		p := s.products[line.ProductID]
		p.StockQuantity += line.Quantity
		p.UpdatedAt = now
	}
	return nil
}

// CommitOrder 寫訂單與扣庫存, 任一失敗都不留下痕跡
func (s *Store) CommitOrder(ctx context.Context, order *model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderID]; exists {
		return apperr.InvalidArgument("order %s already exists", order.OrderID)
	}
	if err := s.reserveLocked(order.Lines()); err != nil {
		return err
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	s.orders[order.OrderID] = cloneOrder(order)
	return nil
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "order not found")
	}
	return cloneOrder(o), nil
}

func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// 先全部驗證再套用, 同一個商品出現多次時以累計數量檢查
func (s *Store) reserveLocked(lines []model.Line) error {
	sorted := model.SortLines(lines)
	demand := make(map[int64]int, len(sorted))
	for _, line := range sorted {
		if line.Quantity <= 0 {
			return apperr.InvalidArgument("quantity for product %d must be positive", line.ProductID)
		}
		p, ok := s.products[line.ProductID]
		if !ok || !p.IsActive() {
			return apperr.ProductUnavailable(line.ProductID)
		}
		demand[line.ProductID] += line.Quantity
		if p.StockQuantity < demand[line.ProductID] {
			return apperr.InsufficientStock(line.ProductID)
		}
	}
	now := time.Now().UTC()
	for productID, qty := range demand {
		p := s.products[productID]
		p.StockQuantity -= qty
		p.UpdatedAt = now
	}
	return nil
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.OrderItems = append([]model.OrderItem(nil), o.OrderItems...)
	return &cp
}
