package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付き
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, pageSize int) ([]model.Order, int64, error)
	//管理者用の注文一覧
	ListAll(ctx context.Context, page int, pageSize int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// 決済完了: payment_status=completed, status=processing, intent idを保存
	MarkPaid(ctx context.Context, orderID int64, paymentIntentID string) error

	Count(ctx context.Context) (int64, error)
	SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error)
}
