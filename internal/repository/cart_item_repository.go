package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 明細と、その時点の商品
type CartLine struct {
	Item    model.CartItem
	Product model.Product
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	ListLines(ctx context.Context, cartID int64) ([]CartLine, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
	DeleteByCartID(ctx context.Context, cartID int64) error
}
