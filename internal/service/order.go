package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// OrderService оформляет заказы и отдаёт историю заказов.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64) (int64, error)
	ListOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	cartRepo  storage.CartStorage
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:       log,
		db:        db,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// PlaceOrder превращает корзину пользователя в заказ.
// Чтение корзины, создание заказа, всех позиций и очистка корзины выполняются в одной транзакции.
// Цена позиции берётся из прочитанной корзины и дальше не пересчитывается.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64) (int64, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting order transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, &OrderPersistenceError{Stage: "begin transaction", Err: err}
	}

	// Снимок корзины; строки заблокированы до конца транзакции
	lines, err := s.cartRepo.ListCartForUpdate(ctx, tx, userID)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to read cart", slog.Any("error", err))
		return 0, &OrderPersistenceError{Stage: "read cart", Err: err}
	}
	if len(lines) == 0 {
		rollback(tx, logger)
		logger.Info("cart is empty")
		return 0, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}

	orderID, err := s.orderRepo.CreateOrder(ctx, tx, userID, total)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to create order", slog.Any("error", err))
		return 0, &OrderPersistenceError{Stage: "create order", Err: err}
	}

	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		item := &models.OrderItem{
			OrderID:     orderID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			Price:       line.Price,
		}
		if err := s.orderRepo.CreateOrderItem(ctx, tx, item); err != nil {
			rollback(tx, logger)
			logger.Error("failed to create order item", slog.Int64("productID", line.ProductID), slog.Any("error", err))
			return 0, &OrderPersistenceError{Stage: "create order item", Err: err}
		}
		lineIDs = append(lineIDs, line.ID)
	}

	if err := s.cartRepo.ClearCart(ctx, tx, userID, lineIDs); err != nil {
		rollback(tx, logger)
		logger.Error("failed to clear cart", slog.Any("error", err))
		return 0, &OrderPersistenceError{Stage: "clear cart", Err: err}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, &OrderPersistenceError{Stage: "commit", Err: err}
	}

	logger.Info("order placed", slog.Int64("orderID", orderID), slog.String("total", total.StringFixed(2)))
	return orderID, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: order %d: %w", op, orderID, ErrNotFound)
		}
		s.log.Error("failed to get order", slog.String("op", op), slog.Int64("orderID", orderID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}
