package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type EmailLogRepository interface {
	Create(ctx context.Context, log *model.EmailLog) error
	UpdateStatus(ctx context.Context, id int64, status model.EmailStatus, errMsg string) error
}
