package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ユーザーがキャンセルできるのはpending/processingだけ
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// 前進のみ。cancelledへの遷移はCancellableで判定する。
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Totalは作成時に確定し、以後変えない
type Order struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                int64           `gorm:"not null;index" json:"user_id"`
	ShippingAddressID     int64           `gorm:"not null" json:"shipping_address_id"`
	Total                 decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status                OrderStatus     `gorm:"type:varchar(20);not null;index;default:'pending'" json:"status"`
	PaymentStatus         PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	StripePaymentIntentID string          `gorm:"type:varchar(255)" json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
