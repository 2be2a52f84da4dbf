package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

const trendingLimit = 10

type ProductUsecase struct {
	products repo.ProductRepository
	cache    ProductCache
	logger   *zap.Logger
}

// DI
func NewProductUsecase(products repo.ProductRepository, cache ProductCache, logger *zap.Logger) *ProductUsecase {
	return &ProductUsecase{
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	PageSize int
	Category string
	Search   string
}

type ProductListOutput struct {
	Items    []model.Product `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	page, pageSize := normalizePage(in.Page, in.PageSize, 20)

	search := strings.TrimSpace(in.Search)
	if len(search) > 100 {
		return ProductListOutput{}, NewError(KindInvalidInput, "search too long")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(in.Category),
		Search:   search,
	})
	if err != nil {
		return ProductListOutput{}, internalError(err)
	}

	return ProductListOutput{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore(page, pageSize, total),
	}, nil
}

// Get はキャッシュを先に見る。キャッシュの障害はDBへのフォールバックで吸収する。
func (u *ProductUsecase) Get(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewError(KindInvalidInput, "invalid product id")
	}

	cached, ok, err := u.cache.Get(ctx, productID)
	if err != nil {
		u.logger.Warn("product cache get failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, internalError(err)
	}

	if err := u.cache.Set(ctx, p); err != nil {
		u.logger.Warn("product cache set failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	return p, nil
}

// 在庫ありでレビュー数の多い順
func (u *ProductUsecase) Trending(ctx context.Context) ([]model.Product, error) {
	items, err := u.products.ListTrending(ctx, trendingLimit)
	if err != nil {
		return nil, internalError(err)
	}
	return items, nil
}
