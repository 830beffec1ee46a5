package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/storefront/internal/access"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/lib/logger/handlers/urllog"
	"github.com/linemk/storefront/internal/service"
)

// Services — зависимости HTTP-слоя
type Services struct {
	Accounts service.AccountService
	Catalog  service.CatalogService
	Carts    service.CartService
	Orders   service.OrderService
	Images   handlers.ImageStore
	// ImagesDir раздается по /images/*; пустая строка отключает раздачу
	ImagesDir string
}

// NewRouter собирает маршруты. Изменяющие группы закрыты JWT и проверкой права.
func NewRouter(log *slog.Logger, jwtSecret string, svc Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// публичные эндпоинты
	router.Post("/api/auth/register", handlers.RegisterHandler(log, svc.Accounts))
	router.Post("/api/auth/login", handlers.LoginHandler(log, svc.Accounts))
	router.Get("/api/products", handlers.ListProductsHandler(log, svc.Catalog))
	router.Get("/api/products/{id}", handlers.GetProductHandler(log, svc.Catalog))
	router.Get("/api/products/{id}/recommendations", handlers.RecommendationsHandler(log, svc.Catalog))
	router.Get("/api/categories", handlers.ListCategoriesHandler(log, svc.Catalog))

	if svc.ImagesDir != "" {
		fs := http.StripPrefix(handlers.ImagesURLPrefix, http.FileServer(http.Dir(svc.ImagesDir)))
		router.Handle(handlers.ImagesURLPrefix+"*", fs)
	}

	jwtMW := jwtmiddleware.NewJWTMiddleware(jwtSecret)

	// корзина, заказы и профиль покупателя
	router.Group(func(r chi.Router) {
		r.Use(jwtMW)
		r.Use(jwtmiddleware.Require(log, access.CapShop))

		r.Get("/api/cart", handlers.GetCartHandler(log, svc.Carts))
		r.Post("/api/cart/items/{productID}", handlers.AddToCartHandler(log, svc.Carts))
		r.Delete("/api/cart/items/{lineID}", handlers.RemoveFromCartHandler(log, svc.Carts))

		r.Post("/api/orders", handlers.PlaceOrderHandler(log, svc.Orders))
		r.Get("/api/orders", handlers.ListOrdersHandler(log, svc.Orders))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(log, svc.Orders))

		r.Get("/api/profile", handlers.GetProfileHandler(log, svc.Accounts))
		r.Put("/api/profile", handlers.UpdateProfileHandler(log, svc.Accounts))
	})

	// управление каталогом, только для администратора
	router.Group(func(r chi.Router) {
		r.Use(jwtMW)
		r.Use(jwtmiddleware.Require(log, access.CapManageCatalog))

		r.Post("/api/admin/products", handlers.CreateProductHandler(log, svc.Catalog, svc.Images))
		r.Put("/api/admin/products/{id}", handlers.UpdateProductHandler(log, svc.Catalog, svc.Images))
		r.Delete("/api/admin/products/{id}", handlers.DeleteProductHandler(log, svc.Catalog, svc.Images))
	})

	return router
}
