package usecase

import (
	"context"

	"storefront/internal/domain/model"
)

const PaymentIntentSucceeded = "succeeded"

// 決済プロバイダ上のPaymentIntent
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64 // 最小通貨単位（cents）
	Currency     string
	Metadata     map[string]string
}

// 外部の決済プロバイダ（Stripeなど）
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (PaymentIntent, error)
}

// メール送信。失敗しても呼び出し元には返さない。
type Notifier interface {
	Dispatch(ctx context.Context, to, subject, htmlBody string)
}

// 注文イベントの送信先
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// 商品詳細のキャッシュ
type ProductCache interface {
	Get(ctx context.Context, id int64) (model.Product, bool, error)
	Set(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}

// JWTを発行する約束
type TokenIssuer interface {
	Issue(user model.User) (token string, err error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}
