package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// CartSummary строки корзины и сумма по текущим ценам
type CartSummary struct {
	Items []*models.CartLine `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// CartService управляет корзиной пользователя.
type CartService interface {
	AddToCart(ctx context.Context, userID, productID int64) error
	RemoveFromCart(ctx context.Context, userID, lineID int64) error
	ListCart(ctx context.Context, userID int64) ([]*models.CartLine, error)
	Summary(ctx context.Context, userID int64) (*CartSummary, error)
}

type cartService struct {
	log      *slog.Logger
	cartRepo storage.CartStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage) CartService {
	return &cartService{
		log:      log,
		cartRepo: cartRepo,
	}
}

// AddToCart добавляет одну единицу товара
func (s *cartService) AddToCart(ctx context.Context, userID, productID int64) error {
	const op = "service.CartService.AddToCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if err := s.cartRepo.AddToCart(ctx, userID, productID); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) || errors.Is(err, storage.ErrUserNotFound) {
			logger.Info("product or user not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		logger.Error("failed to add to cart", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("product added to cart")
	return nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, lineID int64) error {
	const op = "service.CartService.RemoveFromCart"

	if err := s.cartRepo.RemoveFromCart(ctx, userID, lineID); err != nil {
		s.log.Error("failed to remove from cart", slog.String("op", op), slog.Int64("lineID", lineID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *cartService) ListCart(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	const op = "service.CartService.ListCart"

	lines, err := s.cartRepo.ListCart(ctx, userID)
	if err != nil {
		s.log.Error("failed to list cart", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

// Summary считает сумму как количество * цена по каждой строке
func (s *cartService) Summary(ctx context.Context, userID int64) (*CartSummary, error) {
	lines, err := s.ListCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	if lines == nil {
		lines = []*models.CartLine{}
	}
	return &CartSummary{Items: lines, Total: total}, nil
}
