package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/config"
	"github.com/stretchr/testify/assert"
)

var imageLiteral = regexp.MustCompile(`'([^']*\.(?i:png|jpe?g|gif))'`)

// Ссылки на изображения в миграциях должны иметь тот же вид, что и у загруженных товаров
func TestMigrations_ImageURLsUseServedPrefix(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.up.sql"))
	assert.NoError(t, err)
	assert.NotEmpty(t, files)

	for _, f := range files {
		b, err := os.ReadFile(f)
		assert.NoError(t, err)
		for _, m := range imageLiteral.FindAllStringSubmatch(string(b), -1) {
			assert.True(t, strings.HasPrefix(m[1], handlers.ImagesURLPrefix), "%s: image %q is not under %s", f, m[1], handlers.ImagesURLPrefix)
		}
	}
}

func TestSeedMigration_HasNoImageFiles(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000002_seed_products.up.sql"))
	assert.NoError(t, err)
	seed := string(b)

	assert.Contains(t, seed, "'Laptop', 1000.00, 'Electronics', ''")
	assert.Empty(t, imageLiteral.FindAllString(seed, -1), "seed rows reference no image files")
}

func TestBuildMigrateDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "shop", Password: "secret", Name: "storefront"}
	assert.Equal(t,
		"postgres://shop:secret@db:5432/storefront?sslmode=disable&x-migrations-table=migrations",
		buildMigrateDSN(cfg, migrationTableName),
	)
}
