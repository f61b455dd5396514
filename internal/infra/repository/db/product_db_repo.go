package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// 商品目錄只讀, 庫存異動一律走 StockLedger
type ProductDBRepo struct {
	db *DbDao
}

func NewProductDBRepo(db *DbDao) *ProductDBRepo {
	return &ProductDBRepo{db: db}
}

func (s *ProductDBRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// GetProduct 不存在時回傳 apperr NotFound
func (s *ProductDBRepo) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	return getProduct(ctx, s.db.DB, productID)
}

func (s *ProductDBRepo) UpdateStatus(ctx context.Context, productID int64, status model.ProductStatus) error {
	result := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update product %d status: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ProductNotFound(productID)
	}
	return nil
}

func getProduct(ctx context.Context, tx *gorm.DB, productID int64) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ProductNotFound(productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	return &product, nil
}
