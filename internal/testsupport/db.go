// Package testsupport opens throwaway databases for package tests.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/domain"
	"storefront/internal/infra/mysql"
)

// NewDB returns a migrated SQLite database backed by a file in t.TempDir.
// A single connection is kept open so transactions serialize the way row
// locks would on MySQL.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storefront.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.AutoMigrate(db))
	return db
}

// SeedCategory inserts an active category.
func SeedCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{Name: name, Slug: slug(name), IsActive: true}
	require.NoError(t, db.WithContext(context.Background()).Create(c).Error)
	return c
}

// SeedProduct inserts an active product in a fresh category.
func SeedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *domain.Product {
	t.Helper()
	c := SeedCategory(t, db, "cat-"+name)
	p := &domain.Product{
		CategoryID: c.ID,
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// ReloadProduct reads the product back, including soft-deleted rows.
func ReloadProduct(t *testing.T, db *gorm.DB, id uint64) *domain.Product {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.Unscoped().First(&p, id).Error)
	return &p
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
