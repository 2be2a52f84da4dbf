package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type emailLogGormRepository struct {
	db *gorm.DB
}

func NewEmailLogGormRepository(db *gorm.DB) repo.EmailLogRepository {
	return &emailLogGormRepository{db: db}
}

func (r *emailLogGormRepository) Create(ctx context.Context, log *model.EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *emailLogGormRepository) UpdateStatus(ctx context.Context, id int64, status model.EmailStatus, errMsg string) error {
	res := r.db.WithContext(ctx).
		Model(&model.EmailLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": errMsg})

	return affected(res)
}
