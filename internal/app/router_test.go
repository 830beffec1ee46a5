package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/lib/imagestore"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
)

const testSecret = "router-secret"

type memUserRepo struct {
	users map[string]*models.User
}

var _ storage.UserStorage = (*memUserRepo)(nil)

func (m *memUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, storage.ErrUserNotFound
}

func (m *memUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := m.users[user.Username]; ok {
		return nil, storage.ErrUsernameTaken
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.Username] = user
	return user, nil
}

func (m *memUserRepo) UpdateUserProfile(ctx context.Context, id int64, email, address string) error {
	u, err := m.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	u.Email, u.Address = email, address
	return nil
}

type stubCatalog struct {
	service.CatalogService
	deleted int64
}

func (s *stubCatalog) ListProducts(ctx context.Context, category string) ([]*models.Product, error) {
	return []*models.Product{{ID: 1, Name: "Laptop", Category: "Electronics"}}, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return &models.Product{ID: id, Name: "Laptop"}, nil
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id int64) error {
	s.deleted = id
	return nil
}

type stubCart struct {
	service.CartService
}

func (stubCart) Summary(ctx context.Context, userID int64) (*service.CartSummary, error) {
	return &service.CartSummary{Items: []*models.CartLine{}}, nil
}

type stubOrders struct {
	service.OrderService
}

func (stubOrders) PlaceOrder(ctx context.Context, userID int64) (int64, error) {
	return 0, service.ErrEmptyCart
}

type apiClient struct {
	t   *testing.T
	url string
}

func (c apiClient) do(method, path, token string, body io.Reader) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.url+path, body)
	assert.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c apiClient) login(username, password string) string {
	c.t.Helper()
	body := []byte(`{"username": "` + username + `", "password": "` + password + `"}`)
	resp := c.do("POST", "/api/auth/login", "", bytes.NewBuffer(body))
	assert.Equal(c.t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid login")

	var authResp struct {
		Token string `json:"token"`
	}
	assert.NoError(c.t, json.NewDecoder(resp.Body).Decode(&authResp))
	assert.NotEmpty(c.t, authResp.Token)
	return authResp.Token
}

func newTestServer(t *testing.T) (apiClient, service.AccountService, *stubCatalog) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	imagesDir := t.TempDir()
	images, err := imagestore.New(imagesDir)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(filepath.Join(imagesDir, "laptop.png"), []byte("png"), 0o644))

	accounts := service.NewAccountService(log, &memUserRepo{users: map[string]*models.User{}}, testSecret, time.Hour)
	catalog := &stubCatalog{}

	router := app.NewRouter(log, testSecret, app.Services{
		Accounts:  accounts,
		Catalog:   catalog,
		Carts:     stubCart{},
		Orders:    stubOrders{},
		Images:    images,
		ImagesDir: imagesDir,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return apiClient{t: t, url: srv.URL}, accounts, catalog
}

// сценарий покупателя: регистрация, вход, корзина, пустой заказ
func TestAPI_ShopperFlow(t *testing.T) {
	c, _, _ := newTestServer(t)

	resp := c.do("POST", "/api/auth/register", "", bytes.NewBufferString(`{"username": "alice", "password": "password123"}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.do("POST", "/api/auth/register", "", bytes.NewBufferString(`{"username": "alice", "password": "password123"}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate username")

	token := c.login("alice", "password123")

	resp = c.do("GET", "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "cart requires a token")

	resp = c.do("GET", "/api/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do("POST", "/api/orders", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "empty cart")

	resp = c.do("GET", "/api/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var profile service.Profile
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.Equal(t, "alice", profile.Username)
	assert.False(t, profile.IsAdmin)
}

func TestAPI_PublicCatalog(t *testing.T) {
	c, _, _ := newTestServer(t)

	resp := c.do("GET", "/api/products?category=all", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do("GET", "/images/laptop.png", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, "png", string(b))
}

func TestAPI_AdminRoutes(t *testing.T) {
	c, accounts, catalog := newTestServer(t)

	_, err := accounts.Register(context.Background(), service.RegisterInput{Username: "bob", Password: "password123"})
	assert.NoError(t, err)
	assert.NoError(t, accounts.EnsureAdmin(context.Background(), service.RegisterInput{Username: "root", Password: "rootpass"}))

	resp := c.do("DELETE", "/api/admin/products/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	shopperToken := c.login("bob", "password123")
	resp = c.do("DELETE", "/api/admin/products/1", shopperToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "shopper cannot manage the catalog")
	assert.Equal(t, int64(0), catalog.deleted)

	adminToken := c.login("root", "rootpass")
	resp = c.do("DELETE", "/api/admin/products/1", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(1), catalog.deleted)
}
