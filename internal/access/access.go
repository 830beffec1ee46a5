// Package access описывает, кто выполняет запрос и что ему разрешено.
// Права проверяет Principal.Can, роутер вызывает его перед изменяющими обработчиками.
package access

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin access required")
)

// Capability — право на группу операций
type Capability int

const (
	// CapShop — корзина, заказы и профиль текущего пользователя
	CapShop Capability = iota + 1
	// CapManageCatalog — изменение каталога
	CapManageCatalog
)

func (c Capability) String() string {
	switch c {
	case CapShop:
		return "shop"
	case CapManageCatalog:
		return "manage_catalog"
	default:
		return "unknown"
	}
}

// Principal — аутентифицированный пользователь
type Principal struct {
	UserID  int64
	IsAdmin bool
}

// Can возвращает nil, если у пользователя есть право c.
func (p Principal) Can(c Capability) error {
	if p.UserID <= 0 {
		return ErrUnauthenticated
	}
	switch c {
	case CapShop:
		return nil
	case CapManageCatalog:
		if p.IsAdmin {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

type contextKey struct{}

// WithPrincipal кладёт пользователя в контекст запроса.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext извлекает пользователя из контекста.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
