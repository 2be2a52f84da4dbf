package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/infra/telemetry"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 更新はすべてカート行をロックしたトランザクション内で行い、最後にtotalを再計算して保存する。
type CartUsecase struct {
	tx       repo.TransactionManager
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	items repo.CartItemRepository,
	products repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:       tx,
		carts:    carts,
		items:    items,
		products: products,
	}
}

type CartLineView struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	ID    int64           `json:"id"`
	Total decimal.Decimal `json:"total"`
	Items []CartLineView  `json:"items"`
}

type AddCartItemInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart は保存済みのtotalと明細を返す
func (u *CartUsecase) GetCart(ctx context.Context, p model.Principal) (CartView, error) {
	if !p.Authenticated() {
		return CartView{}, errUnauthenticated()
	}

	cart, err := u.carts.FindByUserID(ctx, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewError(KindNotFound, "cart not found")
	}
	if err != nil {
		return CartView{}, internalError(err)
	}

	lines, err := u.items.ListLines(ctx, cart.ID)
	if err != nil {
		return CartView{}, internalError(err)
	}
	return toCartView(cart, lines), nil
}

// AddItem は同一商品なら数量を加算、無ければ明細を作る。
// 在庫チェックは目安で、確保は注文確定時に行う。
func (u *CartUsecase) AddItem(ctx context.Context, p model.Principal, in AddCartItemInput) (CartView, error) {
	if !p.Authenticated() {
		return CartView{}, errUnauthenticated()
	}
	if in.ProductID <= 0 {
		return CartView{}, NewError(KindInvalidInput, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartView{}, NewError(KindInvalidInput, "quantity must be at least 1")
	}

	product, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return CartView{}, internalError(err)
	}
	if in.Quantity > product.Stock {
		return CartView{}, NewError(KindInsufficientStock, "insufficient stock")
	}

	return u.mutate(ctx, p.UserID, "add", func(r repo.TxRepos, cart model.Cart) error {
		existing, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, in.ProductID)
		if err == nil {
			return r.CartItems().UpdateQuantity(ctx, existing.ID, existing.Quantity+in.Quantity)
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		_, err = r.CartItems().Create(ctx, model.CartItem{
			CartID:    cart.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
		})
		return err
	})
}

// UpdateItem は数量を上書きする（加算ではない）。0なら明細を削除。
func (u *CartUsecase) UpdateItem(ctx context.Context, p model.Principal, productID int64, in UpdateCartItemInput) (CartView, error) {
	if !p.Authenticated() {
		return CartView{}, errUnauthenticated()
	}
	if productID <= 0 {
		return CartView{}, NewError(KindInvalidInput, "invalid product_id")
	}
	if in.Quantity < 0 {
		return CartView{}, NewError(KindInvalidInput, "quantity must be 0 or more")
	}

	return u.mutate(ctx, p.UserID, "update", func(r repo.TxRepos, cart model.Cart) error {
		if in.Quantity == 0 {
			return r.CartItems().DeleteByCartAndProduct(ctx, cart.ID, productID)
		}

		existing, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "item not in cart")
		}
		if err != nil {
			return err
		}
		return r.CartItems().UpdateQuantity(ctx, existing.ID, in.Quantity)
	})
}

// 明細削除（無ければ何もしない）
func (u *CartUsecase) RemoveItem(ctx context.Context, p model.Principal, productID int64) (CartView, error) {
	if !p.Authenticated() {
		return CartView{}, errUnauthenticated()
	}
	if productID <= 0 {
		return CartView{}, NewError(KindInvalidInput, "invalid product_id")
	}

	return u.mutate(ctx, p.UserID, "remove", func(r repo.TxRepos, cart model.Cart) error {
		return r.CartItems().DeleteByCartAndProduct(ctx, cart.ID, productID)
	})
}

// 全明細を削除してtotalを0にする
func (u *CartUsecase) Clear(ctx context.Context, p model.Principal) (CartView, error) {
	if !p.Authenticated() {
		return CartView{}, errUnauthenticated()
	}

	return u.mutate(ctx, p.UserID, "clear", func(r repo.TxRepos, cart model.Cart) error {
		return r.CartItems().DeleteByCartID(ctx, cart.ID)
	})
}

// カートをロックしてfnを実行し、totalを再計算して保存する。
func (u *CartUsecase) mutate(ctx context.Context, userID int64, op string, fn func(r repo.TxRepos, cart model.Cart) error) (CartView, error) {
	var out CartView

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "cart not found")
		}
		if err != nil {
			return internalError(err)
		}

		if err := fn(r, cart); err != nil {
			if _, ok := AsHTTPError(err); ok {
				return err
			}
			return internalError(err)
		}

		lines, err := r.CartItems().ListLines(ctx, cart.ID)
		if err != nil {
			return internalError(err)
		}

		cart.Total = cartTotal(lines)
		if err := r.Carts().UpdateTotal(ctx, cart.ID, cart.Total); err != nil {
			return internalError(err)
		}

		out = toCartView(cart, lines)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	telemetry.CartMutationsTotal.WithLabelValues(op).Inc()
	return out, nil
}

// Σ price × quantity（現在の商品価格）
func cartTotal(lines []repo.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(l.Item.Quantity)))
	}
	return total.Round(2)
}

func toCartView(cart model.Cart, lines []repo.CartLine) CartView {
	items := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Image:     l.Product.Image,
			Price:     l.Product.Price,
			Stock:     l.Product.Stock,
			Quantity:  l.Item.Quantity,
			Subtotal:  l.Product.Price.Mul(decimal.NewFromInt(l.Item.Quantity)),
		})
	}
	return CartView{ID: cart.ID, Total: cart.Total, Items: items}
}
