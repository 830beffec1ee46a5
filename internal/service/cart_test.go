package service_test

import (
	"context"
	"testing"

	"github.com/linemk/storefront/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartService_AddToCart_IncrementsQuantity(t *testing.T) {
	shop := newFakeShop()
	shop.addProduct(1, "Laptop", "1000.00", "Electronics")
	svc := service.NewCartService(newTestLogger(), &fakeCartRepo{shop: shop})
	ctx := context.Background()

	assert.NoError(t, svc.AddToCart(ctx, 7, 1))
	assert.NoError(t, svc.AddToCart(ctx, 7, 1))

	lines, err := svc.ListCart(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, lines, 1, "same product shares one line")
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartService_AddToCart_UnknownProduct(t *testing.T) {
	svc := service.NewCartService(newTestLogger(), &fakeCartRepo{shop: newFakeShop()})

	err := svc.AddToCart(context.Background(), 7, 42)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	shop := newFakeShop()
	shop.addProduct(1, "Laptop", "1000.00", "Electronics")
	svc := service.NewCartService(newTestLogger(), &fakeCartRepo{shop: shop})
	ctx := context.Background()

	assert.NoError(t, svc.AddToCart(ctx, 7, 1))
	assert.NoError(t, svc.AddToCart(ctx, 8, 1))
	lines, err := svc.ListCart(ctx, 8)
	assert.NoError(t, err)
	otherLine := lines[0].ID

	// Чужая строка не удаляется
	assert.NoError(t, svc.RemoveFromCart(ctx, 7, otherLine))
	lines, err = svc.ListCart(ctx, 8)
	assert.NoError(t, err)
	assert.Len(t, lines, 1)

	// Удаление несуществующей строки не ошибка
	assert.NoError(t, svc.RemoveFromCart(ctx, 7, 999))

	assert.NoError(t, svc.RemoveFromCart(ctx, 8, otherLine))
	lines, err = svc.ListCart(ctx, 8)
	assert.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartService_Summary(t *testing.T) {
	shop := newFakeShop()
	shop.addProduct(1, "Laptop", "1000.00", "Electronics")
	shop.addProduct(2, "Phone", "700.00", "Electronics")
	svc := service.NewCartService(newTestLogger(), &fakeCartRepo{shop: shop})
	ctx := context.Background()

	summary, err := svc.Summary(ctx, 7)
	assert.NoError(t, err)
	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Total.IsZero())

	assert.NoError(t, svc.AddToCart(ctx, 7, 1))
	assert.NoError(t, svc.AddToCart(ctx, 7, 2))
	assert.NoError(t, svc.AddToCart(ctx, 7, 2))

	summary, err = svc.Summary(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	// Сумма учитывает количество: 1000 + 2*700
	assert.True(t, decimal.NewFromInt(2400).Equal(summary.Total), "got %s", summary.Total)

	// Корзина показывает текущую цену товара
	shop.products[2].Price = decimal.NewFromInt(600)
	summary, err = svc.Summary(ctx, 7)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2200).Equal(summary.Total), "got %s", summary.Total)
}
