package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrEmptyCart — в корзине нет товаров, заказ не создан
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound — товар, заказ или пользователь не найден
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername — имя пользователя уже занято
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials — неверное имя пользователя или пароль
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidPrice — отрицательная цена товара
	ErrInvalidPrice = errors.New("price must not be negative")
)

// OrderPersistenceError — сбой хранилища при оформлении заказа.
// Транзакция в этом случае откатывается: заказа нет, корзина не тронута.
type OrderPersistenceError struct {
	Stage string
	Err   error
}

func (e *OrderPersistenceError) Error() string {
	return fmt.Sprintf("order not persisted: %s: %v", e.Stage, e.Err)
}

func (e *OrderPersistenceError) Unwrap() error {
	return e.Err
}

// rollback откатывает транзакцию, ошибку отката только логирует
func rollback(tx *sql.Tx, logger *slog.Logger) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
