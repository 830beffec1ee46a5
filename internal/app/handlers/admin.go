package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
	"github.com/shopspring/decimal"
)

const (
	maxUploadSize = 10 << 20
	// ImagesURLPrefix — путь, по которому раздаются загруженные изображения
	ImagesURLPrefix = "/images/"
)

// ImageStore сохраняет и удаляет файлы изображений товаров
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(name string) error
}

// ProductForm поля multipart-формы товара
type ProductForm struct {
	Name     string `validate:"required,max=200"`
	Price    string `validate:"required,numeric"`
	Category string `validate:"required,max=100"`
}

func parseProductForm(r *http.Request) (*models.Product, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	form := ProductForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Price:    strings.TrimSpace(r.FormValue("price")),
		Category: strings.TrimSpace(r.FormValue("category")),
	}
	if err := validate.Struct(form); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", form.Price, err)
	}

	return &models.Product{
		Name:     form.Name,
		Price:    price,
		Category: form.Category,
	}, nil
}

// saveImage сохраняет файл из поля image; без файла возвращает пустое имя
func saveImage(r *http.Request, images ImageStore) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return images.Save(header.Filename, file)
}

func removeImage(images ImageStore, logger *slog.Logger, url string) {
	if !strings.HasPrefix(url, ImagesURLPrefix) {
		return
	}
	if err := images.Remove(strings.TrimPrefix(url, ImagesURLPrefix)); err != nil {
		logger.Warn("failed to remove image", slog.String("url", url), slog.Any("error", err))
	}
}

// CreateProductHandler обрабатывает POST /api/admin/products (multipart: name, price, category, image)
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService, images ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		product, err := parseProductForm(r)
		if err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			http.Error(w, "invalid product form", http.StatusBadRequest)
			return
		}

		name, err := saveImage(r, images)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if name == "" {
			http.Error(w, "image is required", http.StatusBadRequest)
			return
		}
		product.ImageURL = ImagesURLPrefix + name

		created, err := catalog.CreateProduct(r.Context(), product)
		if err != nil {
			removeImage(images, logger, product.ImageURL)
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, created)
	}
}

// UpdateProductHandler обрабатывает PUT /api/admin/products/{id}; без файла изображение не меняется
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService, images ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		current, err := catalog.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		product, err := parseProductForm(r)
		if err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			http.Error(w, "invalid product form", http.StatusBadRequest)
			return
		}
		product.ID = id

		name, err := saveImage(r, images)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if name != "" {
			product.ImageURL = ImagesURLPrefix + name
		}

		if err := catalog.UpdateProduct(r.Context(), product); err != nil {
			removeImage(images, logger, product.ImageURL)
			writeError(w, logger, err)
			return
		}
		updated := *product
		if name != "" {
			removeImage(images, logger, current.ImageURL)
		} else {
			updated.ImageURL = current.ImageURL
		}
		writeJSON(w, logger, http.StatusOK, &updated)
	}
}

// DeleteProductHandler обрабатывает DELETE /api/admin/products/{id}
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService, images ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r, "id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		current, err := catalog.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		if err := catalog.DeleteProduct(r.Context(), id); err != nil {
			writeError(w, logger, err)
			return
		}
		removeImage(images, logger, current.ImageURL)
		w.WriteHeader(http.StatusNoContent)
	}
}
