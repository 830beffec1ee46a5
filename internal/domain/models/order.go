package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет оформленный заказ. После создания не изменяется.
type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []*OrderItem    `json:"items,omitempty"`
}

// OrderItem представляет позицию заказа с ценой на момент покупки.
// ProductID — слабая ссылка: товар может быть удален, позиция при этом сохраняется.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"` // заполняется через LEFT JOIN, пусто для удаленных товаров
}
