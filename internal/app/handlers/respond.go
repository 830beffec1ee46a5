package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/storefront/internal/access"
	"github.com/linemk/storefront/internal/lib/imagestore"
	"github.com/linemk/storefront/internal/service"
)

var validate = validator.New()

// MessageResponse — ответ без данных
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// errorStatus сопоставляет ошибку сервиса с HTTP-статусом и текстом для клиента
func errorStatus(err error) (int, string) {
	var persistErr *service.OrderPersistenceError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusConflict, service.ErrEmptyCart.Error()
	case errors.Is(err, service.ErrDuplicateUsername):
		return http.StatusConflict, service.ErrDuplicateUsername.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, service.ErrNotFound.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrInvalidPrice):
		return http.StatusBadRequest, service.ErrInvalidPrice.Error()
	case errors.Is(err, imagestore.ErrUnsupportedFormat):
		return http.StatusBadRequest, imagestore.ErrUnsupportedFormat.Error()
	case errors.Is(err, access.ErrUnauthenticated):
		return http.StatusUnauthorized, access.ErrUnauthenticated.Error()
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden, access.ErrForbidden.Error()
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, "order could not be placed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	} else {
		logger.Info("request rejected", slog.Int("status", status), slog.Any("error", err))
	}
	http.Error(w, msg, status)
}

// userID достает пользователя, которого положил jwtmiddleware
func userID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	p, ok := access.FromContext(r.Context())
	if !ok || p.UserID <= 0 {
		logger.Error("principal not found in context")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return p.UserID, true
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}
