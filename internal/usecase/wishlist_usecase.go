package usecase

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type WishlistUsecase struct {
	wishlist repo.WishlistRepository
	products repo.ProductRepository
}

func NewWishlistUsecase(wishlist repo.WishlistRepository, products repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlist: wishlist, products: products}
}

type WishlistItemView struct {
	ID        int64         `json:"id"`
	ProductID int64         `json:"product_id"`
	Product   model.Product `json:"product"`
	CreatedAt time.Time     `json:"created_at"`
}

func (u *WishlistUsecase) List(ctx context.Context, p model.Principal) ([]WishlistItemView, error) {
	if !p.Authenticated() {
		return nil, errUnauthenticated()
	}

	entries, err := u.wishlist.ListByUserID(ctx, p.UserID)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]WishlistItemView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWishlistItemView(e))
	}
	return out, nil
}

// Add は登録済みなら既存の行を返す
func (u *WishlistUsecase) Add(ctx context.Context, p model.Principal, productID int64) (WishlistItemView, error) {
	if !p.Authenticated() {
		return WishlistItemView{}, errUnauthenticated()
	}
	if productID <= 0 {
		return WishlistItemView{}, NewError(KindInvalidInput, "product_id is required")
	}

	product, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return WishlistItemView{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return WishlistItemView{}, internalError(err)
	}

	item, err := u.wishlist.Add(ctx, p.UserID, productID)
	if err != nil {
		return WishlistItemView{}, internalError(err)
	}
	return toWishlistItemView(repo.WishlistEntry{Item: item, Product: product}), nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, p model.Principal, productID int64) error {
	if !p.Authenticated() {
		return errUnauthenticated()
	}
	if productID <= 0 {
		return NewError(KindInvalidInput, "invalid product id")
	}

	if err := u.wishlist.Remove(ctx, p.UserID, productID); err != nil {
		return internalError(err)
	}
	return nil
}

func toWishlistItemView(e repo.WishlistEntry) WishlistItemView {
	return WishlistItemView{
		ID:        e.Item.ID,
		ProductID: e.Item.ProductID,
		Product:   e.Product,
		CreatedAt: e.Item.CreatedAt,
	}
}
