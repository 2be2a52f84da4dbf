package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) repo.WishlistRepository {
	return &wishlistGormRepository{db: db}
}

func (r *wishlistGormRepository) ListByUserID(ctx context.Context, userID int64) ([]repo.WishlistEntry, error) {
	var items []model.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []repo.WishlistEntry{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	// 削除済み商品はお気に入りから見せない
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]repo.WishlistEntry, 0, len(items))
	for _, it := range items {
		if p, ok := byID[it.ProductID]; ok {
			out = append(out, repo.WishlistEntry{Item: it, Product: p})
		}
	}
	return out, nil
}

func (r *wishlistGormRepository) Add(ctx context.Context, userID int64, productID int64) (model.WishlistItem, error) {
	item := model.WishlistItem{UserID: userID, ProductID: productID}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
	if err != nil {
		return model.WishlistItem{}, err
	}
	if item.ID != 0 {
		return item, nil
	}

	//既に登録済み
	var existing model.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error; err != nil {
		return model.WishlistItem{}, translateError(err)
	}
	return existing, nil
}

func (r *wishlistGormRepository) Remove(ctx context.Context, userID int64, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{}).Error
}
