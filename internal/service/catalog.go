package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// ProductCache кэш полного списка товаров. Ошибки кэша не ломают чтение каталога.
// Generation читается до запроса в БД; SetProducts с устаревшим поколением ничего не пишет.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]*models.Product, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetProducts(ctx context.Context, gen int64, products []*models.Product) (bool, error)
	Invalidate(ctx context.Context) error
}

// CatalogService отдает каталог покупателям и управляет товарами для администратора.
type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Recommendations(ctx context.Context, id int64) ([]*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	cache       ProductCache
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage, cache ProductCache) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
		cache:       cache,
	}
}

// isAllCategories — пустая категория и "all" означают весь каталог
func isAllCategories(category string) bool {
	return category == "" || strings.EqualFold(category, "all")
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"
	logger := s.log.With(slog.String("op", op), slog.String("category", category))

	cached, ok, err := s.cache.GetProducts(ctx)
	if err != nil {
		logger.Warn("catalog cache read failed", slog.Any("error", err))
	}
	if ok {
		if isAllCategories(category) {
			return cached, nil
		}
		filtered := make([]*models.Product, 0, len(cached))
		for _, p := range cached {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		return filtered, nil
	}

	if !isAllCategories(category) {
		products, err := s.productRepo.ListProductsByCategory(ctx, category)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return products, nil
	}

	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		logger.Warn("catalog cache generation read failed", slog.Any("error", genErr))
	}

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if genErr == nil {
		stored, err := s.cache.SetProducts(ctx, gen, products)
		if err != nil {
			logger.Warn("catalog cache write failed", slog.Any("error", err))
		} else if !stored {
			logger.Debug("catalog changed during read, cache not filled")
		}
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: product %d: %w", op, id, ErrNotFound)
		}
		s.log.Error("failed to get product", slog.String("op", op), slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	const op = "service.CatalogService.ListCategories"

	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// Recommendations — другие товары той же категории
func (s *catalogService) Recommendations(ctx context.Context, id int64) ([]*models.Product, error) {
	const op = "service.CatalogService.Recommendations"

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.ListRelatedProducts(ctx, product.Category, product.ID)
	if err != nil {
		s.log.Error("failed to list related products", slog.String("op", op), slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return related, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("name", product.Name))

	if product.Price.IsNegative() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPrice)
	}

	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, logger)
	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	const op = "service.CatalogService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", product.ID))

	if product.Price.IsNegative() {
		return fmt.Errorf("%s: %w", op, ErrInvalidPrice)
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, logger)
	logger.Info("product updated")
	return nil
}

// DeleteProduct удаляет товар. Строки корзин удаляются каскадно, история заказов не меняется.
func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "service.CatalogService.DeleteProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, logger)
	logger.Info("product deleted")
	return nil
}

func (s *catalogService) invalidate(ctx context.Context, logger *slog.Logger) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("catalog cache invalidation failed", slog.Any("error", err))
	}
}
