package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[string]*models.User // ключ — username
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Username]; ok {
		return nil, storage.ErrUsernameTaken
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateUserProfile(ctx context.Context, id int64, email, address string) error {
	u, err := f.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	u.Email = email
	u.Address = address
	return nil
}

// fakeShop — общее хранилище товаров, корзин и заказов для фейковых репозиториев
type fakeShop struct {
	products   map[int64]*models.Product
	lines      []*models.CartLine
	nextLineID int64
	orders     []*models.Order
}

func newFakeShop() *fakeShop {
	return &fakeShop{products: make(map[int64]*models.Product)}
}

func (s *fakeShop) addProduct(id int64, name, price, category string) *models.Product {
	p := &models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		ImageURL: "/images/" + name + ".png",
	}
	s.products[id] = p
	return p
}

type fakeProductRepo struct {
	shop  *fakeShop
	calls int // число обращений к ListProducts
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func (f *fakeProductRepo) sorted(keep func(*models.Product) bool) []*models.Product {
	var out []*models.Product
	for _, p := range f.shop.products {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	f.calls++
	return f.sorted(func(*models.Product) bool { return true }), nil
}

func (f *fakeProductRepo) ListProductsByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	return f.sorted(func(p *models.Product) bool { return p.Category == category }), nil
}

func (f *fakeProductRepo) ListRelatedProducts(ctx context.Context, category string, excludeID int64) ([]*models.Product, error) {
	return f.sorted(func(p *models.Product) bool { return p.Category == category && p.ID != excludeID }), nil
}

func (f *fakeProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range f.sorted(func(*models.Product) bool { return true }) {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.shop.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = int64(len(f.shop.products) + 1)
	cp := *product
	f.shop.products[product.ID] = &cp
	return product, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	p, ok := f.shop.products[product.ID]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.Name = product.Name
	p.Price = product.Price
	p.Category = product.Category
	if product.ImageURL != "" {
		p.ImageURL = product.ImageURL
	}
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.shop.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.shop.products, id)
	kept := f.shop.lines[:0]
	for _, l := range f.shop.lines {
		if l.ProductID != id {
			kept = append(kept, l)
		}
	}
	f.shop.lines = kept
	return nil
}

type fakeCartRepo struct {
	shop *fakeShop
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func (f *fakeCartRepo) AddToCart(ctx context.Context, userID, productID int64) error {
	if _, ok := f.shop.products[productID]; !ok {
		return storage.ErrProductNotFound
	}
	for _, l := range f.shop.lines {
		if l.UserID == userID && l.ProductID == productID {
			l.Quantity++
			return nil
		}
	}
	f.shop.nextLineID++
	f.shop.lines = append(f.shop.lines, &models.CartLine{
		ID:        f.shop.nextLineID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
	})
	return nil
}

func (f *fakeCartRepo) RemoveFromCart(ctx context.Context, userID, lineID int64) error {
	kept := f.shop.lines[:0]
	for _, l := range f.shop.lines {
		if !(l.ID == lineID && l.UserID == userID) {
			kept = append(kept, l)
		}
	}
	f.shop.lines = kept
	return nil
}

// ListCart подставляет текущие название и цену товара, как JOIN в хранилище
func (f *fakeCartRepo) ListCart(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	var out []*models.CartLine
	for _, l := range f.shop.lines {
		if l.UserID != userID {
			continue
		}
		p := f.shop.products[l.ProductID]
		out = append(out, &models.CartLine{
			ID:        l.ID,
			UserID:    l.UserID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
		})
	}
	return out, nil
}

func (f *fakeCartRepo) ListCartForUpdate(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error) {
	return f.ListCart(ctx, userID)
}

func (f *fakeCartRepo) ClearCart(ctx context.Context, tx *sql.Tx, userID int64, lineIDs []int64) error {
	ids := make(map[int64]bool, len(lineIDs))
	for _, id := range lineIDs {
		ids[id] = true
	}
	kept := f.shop.lines[:0]
	for _, l := range f.shop.lines {
		if !(l.UserID == userID && ids[l.ID]) {
			kept = append(kept, l)
		}
	}
	f.shop.lines = kept
	return nil
}

type fakeOrderRepo struct {
	shop *fakeShop
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, totalPrice decimal.Decimal) (int64, error) {
	order := &models.Order{
		ID:         int64(len(f.shop.orders) + 1),
		UserID:     userID,
		TotalPrice: totalPrice,
		CreatedAt:  time.Now(),
	}
	f.shop.orders = append(f.shop.orders, order)
	return order.ID, nil
}

func (f *fakeOrderRepo) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	for _, o := range f.shop.orders {
		if o.ID == item.OrderID {
			item.ID = int64(len(o.Items) + 1)
			cp := *item
			o.Items = append(o.Items, &cp)
			return nil
		}
	}
	return errors.New("order not found")
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var out []*models.Order
	for i := len(f.shop.orders) - 1; i >= 0; i-- {
		if f.shop.orders[i].UserID == userID {
			out = append(out, f.shop.orders[i])
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	for _, o := range f.shop.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return nil, storage.ErrOrderNotFound
}

// fakeCache — кэш каталога в памяти с поколениями и подсчетом сбросов
type fakeCache struct {
	products    []*models.Product
	filled      bool
	generation  int64
	invalidated int
	err         error
}

func (c *fakeCache) GetProducts(ctx context.Context) ([]*models.Product, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	return c.products, c.filled, nil
}

func (c *fakeCache) Generation(ctx context.Context) (int64, error) {
	return c.generation, c.err
}

func (c *fakeCache) SetProducts(ctx context.Context, gen int64, products []*models.Product) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if gen != c.generation {
		return false, nil
	}
	c.products = products
	c.filled = true
	return true, nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	c.generation++
	c.products = nil
	c.filled = false
	return c.err
}
