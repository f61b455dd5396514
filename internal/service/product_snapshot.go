package service

import (
	"context"
	"errors"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

const defaultSnapshotConcurrency = 8

// snapshotProducts 併發讀取商品, 不存在的商品對應 nil
// 其他錯誤會取消剩下的讀取
func snapshotProducts(ctx context.Context, reader ProductReader, lines []model.Line, limit int) (map[int64]*model.Product, error) {
	if limit <= 0 {
		limit = defaultSnapshotConcurrency
	}

	var mu sync.Mutex
	snapshot := make(map[int64]*model.Product, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, line := range lines {
		productID := line.ProductID
		g.Go(func() error {
			p, err := reader.GetProduct(gctx, productID)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			mu.Lock()
			snapshot[productID] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
