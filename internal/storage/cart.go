package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/storefront/internal/domain/models"
)

// CartStorage описывает методы для работы с корзиной.
type CartStorage interface {
	// AddToCart увеличивает количество существующей строки (user, product) на 1 или создаёт строку с количеством 1.
	AddToCart(ctx context.Context, userID, productID int64) error
	// RemoveFromCart удаляет строку корзины пользователя; отсутствие строки не считается ошибкой.
	RemoveFromCart(ctx context.Context, userID, lineID int64) error
	// ListCart возвращает строки корзины с текущими названием, ценой и изображением товара.
	ListCart(ctx context.Context, userID int64) ([]*models.CartLine, error)
	// ListCartForUpdate то же самое внутри транзакции, строки блокируются до её завершения.
	ListCartForUpdate(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error)
	// ClearCart удаляет перечисленные строки корзины пользователя внутри транзакции.
	ClearCart(ctx context.Context, tx *sql.Tx, userID int64, lineIDs []int64) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт новый репозиторий корзины.
func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

const selectCartLines = `
	SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.image_url
	FROM cart_items c
	JOIN products p ON c.product_id = p.id
	WHERE c.user_id = $1
	ORDER BY c.id`

func (r *cartRepository) AddToCart(ctx context.Context, userID, productID int64) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, 1)
	          ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1`
	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			if pqErr.Constraint == "cart_items_user_id_fkey" {
				return ErrUserNotFound
			}
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

func (r *cartRepository) RemoveFromCart(ctx context.Context, userID, lineID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1 AND user_id = $2", lineID, userID); err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

func (r *cartRepository) ListCart(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, selectCartLines, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return scanCartLines(rows)
}

func (r *cartRepository) ListCartForUpdate(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error) {
	rows, err := tx.QueryContext(ctx, selectCartLines+" FOR UPDATE OF c", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	return scanCartLines(rows)
}

func (r *cartRepository) ClearCart(ctx context.Context, tx *sql.Tx, userID int64, lineIDs []int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)", userID, pq.Array(lineIDs))
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func scanCartLines(rows *sql.Rows) ([]*models.CartLine, error) {
	defer rows.Close()

	var lines []*models.CartLine
	for rows.Next() {
		l := &models.CartLine{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.Name, &l.Price, &l.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
