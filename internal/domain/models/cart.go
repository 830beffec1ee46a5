package models

import "github.com/shopspring/decimal"

// CartLine представляет строку корзины пользователя.
// Name, Price и ImageURL заполняются через JOIN с таблицей products и отражают текущие данные товара.
type CartLine struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
}

// Subtotal возвращает стоимость строки по текущей цене товара
func (l *CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
