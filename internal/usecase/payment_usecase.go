package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/telemetry"
	"storefront/internal/notification"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// intentのmetadataに入れる注文IDのキー
const metadataOrderID = "orderId"

type PaymentUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	users      repo.UserRepository
	provider   PaymentProvider
	notifier   Notifier
	events     EventPublisher
	currency   string
	logger     *zap.Logger
	now        func() time.Time
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	users repo.UserRepository,
	provider PaymentProvider,
	notifier Notifier,
	events EventPublisher,
	currency string,
	logger *zap.Logger,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		users:      users,
		provider:   provider,
		notifier:   notifier,
		events:     events,
		currency:   currency,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateIntentInput struct {
	Amount  decimal.Decimal
	OrderID int64 // 任意
}

type IntentOutput struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type ConfirmOutput struct {
	PaymentIntentID string            `json:"payment_intent_id"`
	Status          string            `json:"status"`
	OrderID         int64             `json:"order_id,omitempty"`
	OrderStatus     model.OrderStatus `json:"order_status,omitempty"`
	OrderUpdated    bool              `json:"order_updated"`
}

// CreateIntent は決済プロバイダにintentを作る。注文IDはmetadataに載せる。
// 注文を指定した場合の金額は注文のtotal。
func (u *PaymentUsecase) CreateIntent(ctx context.Context, p model.Principal, in CreateIntentInput) (IntentOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "PaymentUsecase.CreateIntent")
	defer span.End()

	if !p.Authenticated() {
		return IntentOutput{}, errUnauthenticated()
	}
	amount := in.Amount
	metadata := map[string]string{
		"userId": strconv.FormatInt(p.UserID, 10),
	}
	if in.OrderID > 0 {
		o, err := u.orders.FindByID(ctx, in.OrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return IntentOutput{}, NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return IntentOutput{}, internalError(err)
		}
		if o.UserID != p.UserID {
			return IntentOutput{}, NewError(KindForbidden, "forbidden")
		}
		if !payable(o) {
			return IntentOutput{}, NewError(KindInvalidState, "order can no longer be paid")
		}
		// 注文があれば金額は注文のtotal。省略可、指定するなら一致必須
		if !amount.IsZero() && toCents(amount) != toCents(o.Total) {
			return IntentOutput{}, NewError(KindInvalidInput, "amount does not match order total")
		}
		amount = o.Total
		metadata[metadataOrderID] = strconv.FormatInt(o.ID, 10)
	}
	if amount.LessThan(decimal.NewFromInt(1)) {
		return IntentOutput{}, NewError(KindInvalidInput, "amount must be at least 1")
	}

	cents := toCents(amount)

	intent, err := u.provider.CreateIntent(ctx, cents, u.currency, metadata)
	if err != nil {
		u.logger.Error("failed to create payment intent", zap.Int64("user_id", p.UserID), zap.Error(err))
		return IntentOutput{}, NewError(KindUpstream, "payment provider unavailable")
	}

	return IntentOutput{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// ConfirmPayment はintentが成功していれば注文を processing / completed にする。
// metadataに注文IDが無いintentは受け付けるだけで何も更新しない。
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, p model.Principal, paymentIntentID string) (ConfirmOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "PaymentUsecase.ConfirmPayment")
	defer span.End()

	if !p.Authenticated() {
		return ConfirmOutput{}, errUnauthenticated()
	}
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return ConfirmOutput{}, NewError(KindInvalidInput, "payment_intent_id is required")
	}

	intent, err := u.provider.GetIntent(ctx, paymentIntentID)
	if err != nil {
		u.logger.Error("failed to retrieve payment intent", zap.String("payment_intent_id", paymentIntentID), zap.Error(err))
		return ConfirmOutput{}, NewError(KindUpstream, "payment provider unavailable")
	}
	if intent.Status != PaymentIntentSucceeded {
		telemetry.PaymentsIncompleteTotal.Inc()
		return ConfirmOutput{}, NewError(KindPaymentIncomplete, "payment not completed")
	}

	out := ConfirmOutput{PaymentIntentID: intent.ID, Status: intent.Status}

	orderID, ok := orderIDFromMetadata(intent.Metadata)
	if !ok {
		u.logger.Warn("payment intent has no order id, nothing to update",
			zap.String("payment_intent_id", intent.ID),
			zap.Int64("user_id", p.UserID),
		)
		return out, nil
	}

	var order model.Order
	alreadyPaid := false

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return internalError(err)
		}
		if o.UserID != p.UserID && !p.IsAdmin() {
			return NewError(KindForbidden, "forbidden")
		}

		if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusProcessing {
			return NewError(KindInvalidState, "order can no longer be paid")
		}
		// 支払い済みの再確認は成功扱い
		if o.PaymentStatus == model.PaymentStatusCompleted {
			order = o
			alreadyPaid = true
			return nil
		}
		if intent.Amount != toCents(o.Total) {
			return NewError(KindConflict, "payment amount does not match order total")
		}

		if err := r.Orders().MarkPaid(ctx, o.ID, intent.ID); err != nil {
			return internalError(err)
		}
		o.Status = model.OrderStatusProcessing
		o.PaymentStatus = model.PaymentStatusCompleted
		o.StripePaymentIntentID = intent.ID
		order = o
		return nil
	})
	if err != nil {
		return ConfirmOutput{}, err
	}

	out.OrderID = order.ID
	out.OrderStatus = order.Status
	out.OrderUpdated = !alreadyPaid

	if alreadyPaid {
		return out, nil
	}

	telemetry.PaymentsConfirmedTotal.Inc()
	u.logger.Info("payment confirmed",
		zap.Int64("order_id", order.ID),
		zap.String("payment_intent_id", intent.ID),
	)
	publishOrderEvent(ctx, u.events, u.logger, model.NewOrderEvent(model.OrderEventPaid, order, u.now()))
	u.sendConfirmation(ctx, order)

	return out, nil
}

// 確認メール（失敗はログのみ）
func (u *PaymentUsecase) sendConfirmation(ctx context.Context, order model.Order) {
	user, err := u.users.FindByID(ctx, order.UserID)
	if err != nil {
		u.logger.Warn("skip order confirmation email: user lookup failed", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}
	items, err := u.orderItems.ListByOrderID(ctx, order.ID)
	if err != nil {
		u.logger.Warn("skip order confirmation email: items lookup failed", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}

	subject, body := notification.OrderConfirmation(order.ID, order.Total, items)
	u.notifier.Dispatch(ctx, user.Email, subject, body)
}

func payable(o model.Order) bool {
	if o.PaymentStatus == model.PaymentStatusCompleted {
		return false
	}
	return o.Status == model.OrderStatusPending || o.Status == model.OrderStatusProcessing
}

func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func orderIDFromMetadata(metadata map[string]string) (int64, bool) {
	raw, ok := metadata[metadataOrderID]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
