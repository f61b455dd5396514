package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/rs/zerolog"
)

// InventoryService 補貨, 庫存只增不減
type InventoryService struct {
	products ProductReader
	ledger   StockLedger
	audit    AuditRecorder
	logger   *zerolog.Logger
}

func NewInventoryService(products ProductReader, ledger StockLedger, audit AuditRecorder, logger *zerolog.Logger) *InventoryService {
	if products == nil || ledger == nil || audit == nil || logger == nil {
		panic("InventoryService dependency is nil")
	}
	return &InventoryService{products: products, ledger: ledger, audit: audit, logger: logger}
}

// Restock 回傳補貨後的庫存
func (s *InventoryService) Restock(ctx context.Context, productID int64, quantity int) (int, error) {
	if productID <= 0 {
		return 0, apperr.InvalidArgument("product id must be positive")
	}
	if quantity <= 0 {
		return 0, apperr.InvalidArgument("quantity must be positive")
	}

	if err := s.ledger.Release(ctx, []model.Line{{ProductID: productID, Quantity: quantity}}); err != nil {
		return 0, apperr.StorageFailure(err)
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return 0, apperr.StorageFailure(err)
	}

	s.logger.Info().Int64("product_id", productID).Int("quantity", quantity).Int("stock", product.StockQuantity).Msg("stock released")
	s.audit.Record(ctx, model.AuditStockReleased, model.StockReleasedPayload{
		ProductID: productID,
		Quantity:  quantity,
		NewStock:  product.StockQuantity,
	})
	return product.StockQuantity, nil
}
