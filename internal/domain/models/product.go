package models

import "github.com/shopspring/decimal"

// Product представляет товар каталога
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	ImageURL string          `json:"image_url"` // имя файла в хранилище изображений
}
