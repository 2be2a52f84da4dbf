package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/telemetry"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	addresses  repo.AddressRepository
	events     EventPublisher
	cache      ProductCache
	logger     *zap.Logger
	now        func() time.Time
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	addresses repo.AddressRepository,
	events EventPublisher,
	cache ProductCache,
	logger *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		addresses:  addresses,
		events:     events,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateOrderInput struct {
	ShippingAddressID int64
}

type OrderItemView struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

type OrderView struct {
	ID                    int64               `json:"id"`
	UserID                int64               `json:"user_id"`
	ShippingAddressID     int64               `json:"shipping_address_id"`
	Total                 decimal.Decimal     `json:"total"`
	Status                model.OrderStatus   `json:"status"`
	PaymentStatus         model.PaymentStatus `json:"payment_status"`
	StripePaymentIntentID string              `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	Items                 []OrderItemView     `json:"items"`
}

type OrderPage struct {
	Items    []OrderView `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	HasMore  bool        `json:"has_more"`
}

// CreateOrder はカートを注文に変換し、カートを空にする。
// 在庫確保・注文作成・カート削除は1トランザクション。
func (u *OrderUsecase) CreateOrder(ctx context.Context, p model.Principal, in CreateOrderInput) (OrderView, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUsecase.CreateOrder")
	defer span.End()

	if !p.Authenticated() {
		return OrderView{}, errUnauthenticated()
	}
	if in.ShippingAddressID <= 0 {
		return OrderView{}, NewError(KindInvalidInput, "shipping address is required")
	}

	//住所の存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.ShippingAddressID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderView{}, u.checkoutFailed(NewError(KindInvalidAddress, "invalid shipping address"))
	}
	if err != nil {
		return OrderView{}, internalError(err)
	}
	if addr.UserID != p.UserID {
		return OrderView{}, u.checkoutFailed(NewError(KindInvalidAddress, "invalid shipping address"))
	}

	var created model.Order
	var items []model.OrderItem

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, p.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindEmptyCart, "cart is empty")
		}
		if err != nil {
			return internalError(err)
		}

		lines, err := r.CartItems().ListLines(ctx, cart.ID)
		if err != nil {
			return internalError(err)
		}
		if len(lines) == 0 {
			return NewError(KindEmptyCart, "cart is empty")
		}

		//スナップショット＋在庫確保
		items = make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, l := range lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.Product.ID, l.Item.Quantity)
			if err != nil {
				return internalError(err)
			}
			if !ok {
				return NewError(KindInsufficientStock, fmt.Sprintf("insufficient stock for %s", l.Product.Name))
			}

			it := model.OrderItem{
				ProductID:   l.Product.ID,
				ProductName: l.Product.Name,
				Price:       l.Product.Price,
				Quantity:    l.Item.Quantity,
			}
			items = append(items, it)
			total = total.Add(it.Subtotal())
		}

		now := u.now()
		order := model.Order{
			UserID:            p.UserID,
			ShippingAddressID: addr.ID,
			Total:             total.Round(2),
			Status:            model.OrderStatusPending,
			PaymentStatus:     model.PaymentStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return internalError(err)
		}
		order.ID = orderID

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return internalError(err)
		}

		//カートを空にする
		if err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return internalError(err)
		}
		if err := r.Carts().UpdateTotal(ctx, cart.ID, decimal.Zero); err != nil {
			return internalError(err)
		}

		created = order
		return nil
	})
	if err != nil {
		return OrderView{}, u.checkoutFailed(err)
	}

	telemetry.OrdersCreatedTotal.Inc()
	u.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int64("user_id", p.UserID),
		zap.String("total", created.Total.StringFixed(2)),
		zap.Int("items", len(items)),
	)
	u.invalidateStock(ctx, items)
	u.publish(ctx, model.OrderEventCreated, created)

	return toOrderView(created, items), nil
}

// CancelOrder はpending/processingの注文だけキャンセルし、確保した在庫を戻す。
func (u *OrderUsecase) CancelOrder(ctx context.Context, p model.Principal, orderID int64) (OrderView, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUsecase.CancelOrder")
	defer span.End()

	if !p.Authenticated() {
		return OrderView{}, errUnauthenticated()
	}
	if orderID <= 0 {
		return OrderView{}, NewError(KindInvalidInput, "invalid id")
	}

	var cancelled model.Order
	var items []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return internalError(err)
		}
		if o.UserID != p.UserID {
			return NewError(KindForbidden, "forbidden")
		}
		if !o.Status.Cancellable() {
			return NewError(KindInvalidState, fmt.Sprintf("cannot cancel order in status %s", o.Status))
		}

		items, err = r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return internalError(err)
		}

		//在庫戻し
		for _, it := range items {
			err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return internalError(err)
			}
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCancelled); err != nil {
			return internalError(err)
		}

		o.Status = model.OrderStatusCancelled
		cancelled = o
		return nil
	})
	if err != nil {
		return OrderView{}, err
	}

	telemetry.OrdersCancelledTotal.Inc()
	u.logger.Info("order cancelled", zap.Int64("order_id", cancelled.ID), zap.Int64("user_id", p.UserID))
	u.invalidateStock(ctx, items)
	u.publish(ctx, model.OrderEventCancelled, cancelled)

	return toOrderView(cancelled, items), nil
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, p model.Principal, page, pageSize int) (OrderPage, error) {
	if !p.Authenticated() {
		return OrderPage{}, errUnauthenticated()
	}
	page, pageSize = normalizePage(page, pageSize, 10)

	orders, total, err := u.orders.ListByUserID(ctx, p.UserID, page, pageSize)
	if err != nil {
		return OrderPage{}, internalError(err)
	}

	views, err := ordersWithItems(ctx, u.orderItems, orders)
	if err != nil {
		return OrderPage{}, err
	}

	return OrderPage{
		Items:    views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore(page, pageSize, total),
	}, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, p model.Principal, orderID int64) (OrderView, error) {
	if !p.Authenticated() {
		return OrderView{}, errUnauthenticated()
	}
	if orderID <= 0 {
		return OrderView{}, NewError(KindInvalidInput, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderView{}, NewError(KindNotFound, "order not found")
	}
	if err != nil {
		return OrderView{}, internalError(err)
	}
	if o.UserID != p.UserID {
		return OrderView{}, NewError(KindForbidden, "forbidden")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderView{}, internalError(err)
	}
	return toOrderView(o, items), nil
}

func (u *OrderUsecase) checkoutFailed(err error) error {
	if he, ok := AsHTTPError(err); ok {
		telemetry.CheckoutFailuresTotal.WithLabelValues(string(he.Kind)).Inc()
	}
	return err
}

// 在庫が動いた商品の詳細キャッシュを落とす
func (u *OrderUsecase) invalidateStock(ctx context.Context, items []model.OrderItem) {
	if u.cache == nil {
		return
	}
	for _, it := range items {
		if err := u.cache.Delete(ctx, it.ProductID); err != nil {
			u.logger.Warn("product cache invalidation failed", zap.Int64("product_id", it.ProductID), zap.Error(err))
		}
	}
}

func (u *OrderUsecase) publish(ctx context.Context, t model.OrderEventType, o model.Order) {
	publishOrderEvent(ctx, u.events, u.logger, model.NewOrderEvent(t, o, u.now()))
}

// コミット後に送る。失敗はログのみ。
func publishOrderEvent(ctx context.Context, events EventPublisher, logger *zap.Logger, ev model.OrderEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, ev); err != nil {
		telemetry.EventsPublishFailuresTotal.Inc()
		logger.Warn("failed to publish order event",
			zap.String("type", string(ev.Type)),
			zap.Int64("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

func ordersWithItems(ctx context.Context, orderItems repo.OrderItemRepository, orders []model.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		items, err := orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, internalError(err)
		}
		views = append(views, toOrderView(o, items))
	}
	return views, nil
}

func toOrderView(o model.Order, items []model.OrderItem) OrderView {
	outItems := make([]OrderItemView, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}

	return OrderView{
		ID:                    o.ID,
		UserID:                o.UserID,
		ShippingAddressID:     o.ShippingAddressID,
		Total:                 o.Total,
		Status:                o.Status,
		PaymentStatus:         o.PaymentStatus,
		StripePaymentIntentID: o.StripePaymentIntentID,
		CreatedAt:             o.CreatedAt,
		Items:                 outItems,
	}
}
