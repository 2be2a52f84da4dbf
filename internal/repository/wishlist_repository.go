package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type WishlistEntry struct {
	Item    model.WishlistItem
	Product model.Product
}

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]WishlistEntry, error)
	// 既にあれば何もしない
	Add(ctx context.Context, userID int64, productID int64) (model.WishlistItem, error)
	Remove(ctx context.Context, userID int64, productID int64) error
}
