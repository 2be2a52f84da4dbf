package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/notification"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 管理者向けの商品・注文操作。書き込みは監査ログと同じトランザクションで行う。
type AdminUsecase struct {
	tx         repo.TransactionManager
	products   repo.ProductRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	users      repo.UserRepository
	auditLogs  repo.AuditLogRepository
	cache      ProductCache
	notifier   Notifier
	events     EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

type AdminDeps struct {
	Tx         repo.TransactionManager
	Products   repo.ProductRepository
	Orders     repo.OrderRepository
	OrderItems repo.OrderItemRepository
	Users      repo.UserRepository
	AuditLogs  repo.AuditLogRepository
	Cache      ProductCache
	Notifier   Notifier
	Events     EventPublisher
	Logger     *zap.Logger
}

func NewAdminUsecase(d AdminDeps) *AdminUsecase {
	return &AdminUsecase{
		tx:         d.Tx,
		products:   d.Products,
		orders:     d.Orders,
		orderItems: d.OrderItems,
		users:      d.Users,
		auditLogs:  d.AuditLogs,
		cache:      d.Cache,
		notifier:   d.Notifier,
		events:     d.Events,
		logger:     d.Logger,
		now:        time.Now,
	}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	Category    string
	Image       string
	Volume      string
	Alcohol     string
	Origin      string
	Tags        []string
}

type UpdateOrderStatusInput struct {
	Status         string
	TrackingNumber string
}

type DashboardOutput struct {
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProducts int64           `json:"total_products"`
	TotalUsers    int64           `json:"total_users"`
}

type AuditLogQuery struct {
	ActorUserID  int64
	Action       string
	ResourceType string
	ResourceID   int64
	Page         int
	PageSize     int
}

func (u *AdminUsecase) CreateProduct(ctx context.Context, p model.Principal, in ProductInput) (model.Product, error) {
	if err := requireAdmin(p); err != nil {
		return model.Product{}, err
	}
	product, err := productFromInput(in)
	if err != nil {
		return model.Product{}, err
	}

	var created model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err = r.Products().Create(ctx, product)
		if err != nil {
			return internalError(err)
		}
		return u.audit(ctx, r, p, model.AuditActionCreateProduct, model.AuditResourceProduct, created.ID, nil, created)
	})
	if err != nil {
		return model.Product{}, err
	}

	u.logger.Info("product created", zap.Int64("product_id", created.ID), zap.Int64("actor_user_id", p.UserID))
	return created, nil
}

func (u *AdminUsecase) UpdateProduct(ctx context.Context, p model.Principal, productID int64, in ProductInput) (model.Product, error) {
	if err := requireAdmin(p); err != nil {
		return model.Product{}, err
	}
	if productID <= 0 {
		return model.Product{}, NewError(KindInvalidInput, "invalid product id")
	}
	product, err := productFromInput(in)
	if err != nil {
		return model.Product{}, err
	}
	product.ID = productID

	var updated model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "product not found")
		}
		if err != nil {
			return internalError(err)
		}

		if err := r.Products().Update(ctx, product); err != nil {
			return internalError(err)
		}

		updated, err = r.Products().FindByID(ctx, productID)
		if err != nil {
			return internalError(err)
		}
		return u.audit(ctx, r, p, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, updated)
	})
	if err != nil {
		return model.Product{}, err
	}

	u.invalidate(ctx, productID)
	return updated, nil
}

// 論理削除。注文明細のスナップショットは残る
func (u *AdminUsecase) DeleteProduct(ctx context.Context, p model.Principal, productID int64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if productID <= 0 {
		return NewError(KindInvalidInput, "invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "product not found")
		}
		if err != nil {
			return internalError(err)
		}

		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			return internalError(err)
		}
		return u.audit(ctx, r, p, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before, nil)
	})
	if err != nil {
		return err
	}

	u.invalidate(ctx, productID)
	return nil
}

// 全ユーザーの注文一覧（新しい順）
func (u *AdminUsecase) ListOrders(ctx context.Context, p model.Principal, page, pageSize int) (OrderPage, error) {
	if err := requireAdmin(p); err != nil {
		return OrderPage{}, err
	}
	page, pageSize = normalizePage(page, pageSize, 20)

	orders, total, err := u.orders.ListAll(ctx, page, pageSize)
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

// UpdateOrderStatus は前進方向の遷移だけを受け付ける。
// 発送時は発送メールを送る。
func (u *AdminUsecase) UpdateOrderStatus(ctx context.Context, p model.Principal, orderID int64, in UpdateOrderStatusInput) (OrderView, error) {
	if err := requireAdmin(p); err != nil {
		return OrderView{}, err
	}
	if orderID <= 0 {
		return OrderView{}, NewError(KindInvalidInput, "invalid id")
	}

	next := model.OrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	switch next {
	case model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered:
	default:
		return OrderView{}, NewError(KindInvalidInput, "invalid status")
	}

	var updated model.Order
	var items []model.OrderItem
	changed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return internalError(err)
		}

		items, err = r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return internalError(err)
		}

		// すでに同じなら何もしない
		if o.Status == next {
			updated = o
			return nil
		}
		if !o.Status.CanAdvanceTo(next) {
			return NewError(KindInvalidState, "cannot change status from "+string(o.Status)+" to "+string(next))
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, next); err != nil {
			return internalError(err)
		}

		before := o
		o.Status = next
		updated = o
		changed = true

		return u.audit(ctx, r, p, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, o.ID,
			map[string]model.OrderStatus{"status": before.Status},
			map[string]model.OrderStatus{"status": next},
		)
	})
	if err != nil {
		return OrderView{}, err
	}

	if changed {
		u.logger.Info("order status updated",
			zap.Int64("order_id", updated.ID),
			zap.String("status", string(updated.Status)),
			zap.Int64("actor_user_id", p.UserID),
		)
		publishOrderEvent(ctx, u.events, u.logger, model.NewOrderEvent(model.OrderEventStatusChanged, updated, u.now()))
		if updated.Status == model.OrderStatusShipped {
			u.sendShipped(ctx, updated, strings.TrimSpace(in.TrackingNumber))
		}
	}

	return toOrderView(updated, items), nil
}

func (u *AdminUsecase) Dashboard(ctx context.Context, p model.Principal) (DashboardOutput, error) {
	if err := requireAdmin(p); err != nil {
		return DashboardOutput{}, err
	}

	orders, err := u.orders.Count(ctx)
	if err != nil {
		return DashboardOutput{}, internalError(err)
	}
	//売上は配達完了分のみ
	revenue, err := u.orders.SumTotalByStatus(ctx, model.OrderStatusDelivered)
	if err != nil {
		return DashboardOutput{}, internalError(err)
	}
	products, err := u.products.Count(ctx)
	if err != nil {
		return DashboardOutput{}, internalError(err)
	}
	users, err := u.users.Count(ctx)
	if err != nil {
		return DashboardOutput{}, internalError(err)
	}

	return DashboardOutput{
		TotalOrders:   orders,
		TotalRevenue:  revenue.Round(2),
		TotalProducts: products,
		TotalUsers:    users,
	}, nil
}

func (u *AdminUsecase) AuditLogs(ctx context.Context, p model.Principal, q AuditLogQuery) ([]model.AuditLog, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(q.Page, q.PageSize, 50)

	f := repo.AuditLogFilter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if q.ActorUserID > 0 {
		f.ActorUserID = &q.ActorUserID
	}
	if q.ResourceID > 0 {
		f.ResourceID = &q.ResourceID
	}
	if s := strings.TrimSpace(q.Action); s != "" {
		a := model.AuditAction(strings.ToUpper(s))
		f.Action = &a
	}
	if s := strings.TrimSpace(q.ResourceType); s != "" {
		rt := model.AuditResourceType(strings.ToLower(s))
		f.ResourceType = &rt
	}

	logs, err := u.auditLogs.List(ctx, f)
	if err != nil {
		return nil, internalError(err)
	}
	return logs, nil
}

// 監査ログ。before/afterはJSON文字列で残す
func (u *AdminUsecase) audit(
	ctx context.Context,
	r repo.TxRepos,
	p model.Principal,
	action model.AuditAction,
	resource model.AuditResourceType,
	resourceID int64,
	before, after interface{},
) error {
	log := model.AuditLog{
		ActorUserID:  p.UserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    u.now(),
	}
	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return internalError(err)
	}
	return nil
}

func (u *AdminUsecase) invalidate(ctx context.Context, productID int64) {
	if err := u.cache.Delete(ctx, productID); err != nil {
		u.logger.Warn("product cache invalidation failed", zap.Int64("product_id", productID), zap.Error(err))
	}
}

func (u *AdminUsecase) sendShipped(ctx context.Context, o model.Order, tracking string) {
	user, err := u.users.FindByID(ctx, o.UserID)
	if err != nil {
		u.logger.Warn("skip shipped email: user lookup failed", zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}
	subject, body := notification.OrderShipped(o.ID, tracking)
	u.notifier.Dispatch(ctx, user.Email, subject, body)
}

func requireAdmin(p model.Principal) error {
	if !p.Authenticated() {
		return errUnauthenticated()
	}
	if !p.IsAdmin() {
		return NewError(KindForbidden, "admin only")
	}
	return nil
}

func productFromInput(in ProductInput) (model.Product, error) {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Image:       strings.TrimSpace(in.Image),
		Volume:      strings.TrimSpace(in.Volume),
		Alcohol:     strings.TrimSpace(in.Alcohol),
		Origin:      strings.TrimSpace(in.Origin),
		Tags:        in.Tags,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	if p.Name == "" || p.Description == "" || p.Category == "" {
		return model.Product{}, NewError(KindInvalidInput, "name, description, price and category are required")
	}
	if p.Price.IsNegative() {
		return model.Product{}, NewError(KindInvalidInput, "price must be >= 0")
	}
	if p.Stock < 0 {
		return model.Product{}, NewError(KindInvalidInput, "stock must be >= 0")
	}
	return p, nil
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
