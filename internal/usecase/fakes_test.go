package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// インメモリのストア（トランザクションはスナップショットで巻き戻す）
// =====================

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID int64

	users      map[int64]model.User
	products   map[int64]model.Product
	deleted    map[int64]bool
	carts      map[int64]model.Cart
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64][]model.OrderItem
	addresses  map[int64]model.Address
	wishlist   map[int64]model.WishlistItem
	auditLogs  []model.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     100,
		users:      map[int64]model.User{},
		products:   map[int64]model.Product{},
		deleted:    map[int64]bool{},
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64][]model.OrderItem{},
		addresses:  map[int64]model.Address{},
		wishlist:   map[int64]model.WishlistItem{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	nextID     int64
	users      map[int64]model.User
	products   map[int64]model.Product
	deleted    map[int64]bool
	carts      map[int64]model.Cart
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64][]model.OrderItem
	addresses  map[int64]model.Address
	wishlist   map[int64]model.WishlistItem
	auditLogs  []model.AuditLog
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[int64][]model.OrderItem, len(s.orderItems))
	for k, v := range s.orderItems {
		items[k] = append([]model.OrderItem(nil), v...)
	}
	return memSnapshot{
		nextID:     s.nextID,
		users:      copyMap(s.users),
		products:   copyMap(s.products),
		deleted:    copyMap(s.deleted),
		carts:      copyMap(s.carts),
		cartItems:  copyMap(s.cartItems),
		orders:     copyMap(s.orders),
		orderItems: items,
		addresses:  copyMap(s.addresses),
		wishlist:   copyMap(s.wishlist),
		auditLogs:  append([]model.AuditLog(nil), s.auditLogs...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.users = snap.users
	s.products = snap.products
	s.deleted = snap.deleted
	s.carts = snap.carts
	s.cartItems = snap.cartItems
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.addresses = snap.addresses
	s.wishlist = snap.wishlist
	s.auditLogs = snap.auditLogs
}

// --- seed helpers ---

func (s *memStore) addUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	if u.Role == "" {
		u.Role = model.RoleCustomer
	}
	s.users[u.ID] = u
	cartID := s.id()
	s.carts[cartID] = model.Cart{ID: cartID, UserID: u.ID, Total: decimal.Zero}
	return u
}

func (s *memStore) addProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addAddress(a model.Address) model.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.addresses[a.ID] = a
	return a
}

func (s *memStore) addOrder(o model.Order, items []model.OrderItem) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	s.orders[o.ID] = o
	for i := range items {
		items[i].OrderID = o.ID
	}
	s.orderItems[o.ID] = items
	return o
}

func (s *memStore) product(id int64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) order(id int64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) cartOf(userID int64) model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.UserID == userID {
			return c
		}
	}
	return model.Cart{}
}

func (s *memStore) cartItemCount(cartID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.cartItems {
		if it.CartID == cartID {
			n++
		}
	}
	return n
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// =====================
// TransactionManager / TxRepos
// =====================

type memTx struct {
	s *memStore
}

func (t *memTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(t); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func (t *memTx) Users() repo.UserRepository           { return &memUsers{t.s} }
func (t *memTx) Orders() repo.OrderRepository         { return &memOrders{t.s} }
func (t *memTx) OrderItems() repo.OrderItemRepository { return &memOrderItems{t.s} }
func (t *memTx) Carts() repo.CartRepository           { return &memCarts{t.s} }
func (t *memTx) CartItems() repo.CartItemRepository   { return &memCartItems{t.s} }
func (t *memTx) Inventory() repo.InventoryRepository  { return &memInventory{t.s} }
func (t *memTx) Products() repo.ProductRepository     { return &memProducts{t.s} }
func (t *memTx) AuditLogs() repo.AuditLogRepository   { return &memAuditLogs{t.s} }

// =====================
// Repositories
// =====================

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repo.ErrDuplicate
		}
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUsers) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUsers) UpdateProfile(ctx context.Context, userID int64, name string, phone string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.Name, u.Phone = name, phone
	r.s.users[userID] = u
	return nil
}

func (r *memUsers) IncrementTokenVersion(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.TokenVersion++
	r.s.users[userID] = u
	return nil
}

func (r *memUsers) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

type memProducts struct{ s *memStore }

func (r *memProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Product
	for _, p := range r.s.products {
		if r.s.deleted[p.ID] {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(q.Search)) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (q.Page - 1) * q.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memProducts) ListTrending(ctx context.Context, limit int) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, p := range r.s.products {
		if !r.s.deleted[p.ID] && p.Stock > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reviews > out[j].Reviews })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || r.s.deleted[id] {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProducts) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.products[p.ID] = p
	return p, nil
}

func (r *memProducts) Update(ctx context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok || r.s.deleted[p.ID] {
		return repo.ErrNotFound
	}
	p.Rating, p.Reviews = cur.Rating, cur.Reviews
	r.s.products[p.ID] = p
	return nil
}

func (r *memProducts) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok || r.s.deleted[id] {
		return repo.ErrNotFound
	}
	r.s.deleted[id] = true
	return nil
}

func (r *memProducts) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products) - len(r.s.deleted)), nil
}

type memCarts struct{ s *memStore }

func (r *memCarts) Create(ctx context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := model.Cart{ID: r.s.id(), UserID: userID, Total: decimal.Zero}
	r.s.carts[c.ID] = c
	return c, nil
}

func (r *memCarts) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r *memCarts) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	return r.FindByUserID(ctx, userID)
}

func (r *memCarts) UpdateTotal(ctx context.Context, cartID int64, total decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[cartID]
	if !ok {
		return repo.ErrNotFound
	}
	c.Total = total
	r.s.carts[cartID] = c
	return nil
}

type memCartItems struct{ s *memStore }

func (r *memCartItems) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CartItem
	for _, it := range r.s.cartItems {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCartItems) ListLines(ctx context.Context, cartID int64) ([]repo.CartLine, error) {
	items, _ := r.ListByCartID(ctx, cartID)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]repo.CartLine, 0, len(items))
	for _, it := range items {
		if p, ok := r.s.products[it.ProductID]; ok {
			out = append(out, repo.CartLine{Item: it, Product: p})
		}
	}
	return out, nil
}

func (r *memCartItems) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

func (r *memCartItems) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.cartItems {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			return model.CartItem{}, repo.ErrDuplicate
		}
	}
	item.ID = r.s.id()
	r.s.cartItems[item.ID] = item
	return item, nil
}

func (r *memCartItems) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.cartItems[cartItemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	r.s.cartItems[cartItemID] = it
	return nil
}

func (r *memCartItems) DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

func (r *memCartItems) DeleteByCartID(ctx context.Context, cartID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.cartItems {
		if it.CartID == cartID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

type memInventory struct{ s *memStore }

func (r *memInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok || r.s.deleted[productID] || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return true, nil
}

func (r *memInventory) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock += qty
	r.s.products[productID] = p
	return nil
}

type memOrders struct{ s *memStore }

func (r *memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *memOrders) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.FindByID(ctx, orderID)
}

func (r *memOrders) list(match func(model.Order) bool, page, pageSize int) ([]model.Order, int64) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Order
	for _, o := range r.s.orders {
		if match(o) {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

func (r *memOrders) ListByUserID(ctx context.Context, userID int64, page int, pageSize int) ([]model.Order, int64, error) {
	out, total := r.list(func(o model.Order) bool { return o.UserID == userID }, page, pageSize)
	return out, total, nil
}

func (r *memOrders) ListAll(ctx context.Context, page int, pageSize int) ([]model.Order, int64, error) {
	out, total := r.list(func(model.Order) bool { return true }, page, pageSize)
	return out, total, nil
}

func (r *memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order.ID = r.s.id()
	r.s.orders[order.ID] = order
	return order.ID, nil
}

func (r *memOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrders) MarkPaid(ctx context.Context, orderID int64, paymentIntentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = model.OrderStatusProcessing
	o.PaymentStatus = model.PaymentStatusCompleted
	o.StripePaymentIntentID = paymentIntentID
	r.s.orders[orderID] = o
	return nil
}

func (r *memOrders) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.orders)), nil
}

func (r *memOrders) SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, o := range r.s.orders {
		if o.Status == status {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

type memOrderItems struct{ s *memStore }

func (r *memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range items {
		it.ID = r.s.id()
		it.OrderID = orderID
		r.s.orderItems[orderID] = append(r.s.orderItems[orderID], it)
	}
	return nil
}

func (r *memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.OrderItem(nil), r.s.orderItems[orderID]...), nil
}

type memAddresses struct{ s *memStore }

func (r *memAddresses) Create(ctx context.Context, a model.Address) (model.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	r.s.addresses[a.ID] = a
	return a, nil
}

func (r *memAddresses) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Address
	for _, a := range r.s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memAddresses) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[addressID]
	if !ok {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (r *memAddresses) Delete(ctx context.Context, addressID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.addresses[addressID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.addresses, addressID)
	return nil
}

func (r *memAddresses) SetDefault(ctx context.Context, userID, addressID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.addresses {
		if a.UserID == userID {
			a.IsDefault = id == addressID
			r.s.addresses[id] = a
		}
	}
	return nil
}

type memWishlist struct{ s *memStore }

func (r *memWishlist) ListByUserID(ctx context.Context, userID int64) ([]repo.WishlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repo.WishlistEntry
	for _, it := range r.s.wishlist {
		if it.UserID == userID {
			out = append(out, repo.WishlistEntry{Item: it, Product: r.s.products[it.ProductID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.ID < out[j].Item.ID })
	return out, nil
}

func (r *memWishlist) Add(ctx context.Context, userID int64, productID int64) (model.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.wishlist {
		if it.UserID == userID && it.ProductID == productID {
			return it, nil
		}
	}
	it := model.WishlistItem{ID: r.s.id(), UserID: userID, ProductID: productID}
	r.s.wishlist[it.ID] = it
	return it, nil
}

func (r *memWishlist) Remove(ctx context.Context, userID int64, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.wishlist {
		if it.UserID == userID && it.ProductID == productID {
			delete(r.s.wishlist, id)
		}
	}
	return nil
}

type memAuditLogs struct{ s *memStore }

func (r *memAuditLogs) Create(ctx context.Context, log model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = r.s.id()
	r.s.auditLogs = append(r.s.auditLogs, log)
	return nil
}

func (r *memAuditLogs) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AuditLog
	for _, l := range r.s.auditLogs {
		if f.Action != nil && l.Action != *f.Action {
			continue
		}
		if f.ResourceType != nil && l.ResourceType != *f.ResourceType {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// =====================
// 外部ポートのフェイク
// =====================

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *recordingNotifier) Dispatch(ctx context.Context, to, subject, htmlBody string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
}

func (n *recordingNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Types() []model.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.OrderEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type memProductCache struct {
	mu      sync.Mutex
	items   map[int64]model.Product
	deleted []int64
	err     error
}

func newMemProductCache() *memProductCache {
	return &memProductCache{items: map[int64]model.Product{}}
}

func (c *memProductCache) Get(ctx context.Context, id int64) (model.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return model.Product{}, false, c.err
	}
	p, ok := c.items[id]
	return p, ok, nil
}

func (c *memProductCache) Set(ctx context.Context, p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.items[p.ID] = p
	return nil
}

func (c *memProductCache) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	delete(c.items, id)
	return c.err
}

type PaymentProviderMock struct{ mock.Mock }

func (m *PaymentProviderMock) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (usecase.PaymentIntent, error) {
	args := m.Called(ctx, amountCents, currency, metadata)
	pi, _ := args.Get(0).(usecase.PaymentIntent)
	return pi, args.Error(1)
}

func (m *PaymentProviderMock) GetIntent(ctx context.Context, id string) (usecase.PaymentIntent, error) {
	args := m.Called(ctx, id)
	pi, _ := args.Get(0).(usecase.PaymentIntent)
	return pi, args.Error(1)
}

var (
	_ repo.TransactionManager = (*memTx)(nil)
	_ repo.AddressRepository  = (*memAddresses)(nil)
	_ repo.WishlistRepository = (*memWishlist)(nil)
	_ usecase.Notifier        = (*recordingNotifier)(nil)
	_ usecase.EventPublisher  = (*recordingPublisher)(nil)
	_ usecase.ProductCache    = (*memProductCache)(nil)
	_ usecase.PaymentProvider = (*PaymentProviderMock)(nil)
)

// =====================
// helper
// =====================

func customer(id int64) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleCustomer}
}

func admin(id int64) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleAdmin}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func kindOf(err error) usecase.ErrorKind {
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		return ""
	}
	return he.Kind
}
