// Package option provides composable gorm query modifiers for list queries.
package option

import (
	"fmt"
	"strings"

	"github.com/shelfpulselabs/shelfpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// WithSortBy orders by the given clause, falling back to created_at desc.
func WithSortBy(clause string) Option {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if clause == "" {
			return db.Order("created_at desc")
		}
		return db.Order(clause)
	})
}

// WithQuerySortBy validates a user-supplied sort column against an allowlist
// and returns the order clause, or "" when the column is not allowed.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) string {
	col := strings.TrimSpace(sortBy)
	if col == "" || !allowed[col] {
		return ""
	}
	dir := "asc"
	if strings.EqualFold(orderBy, "desc") {
		dir = "desc"
	}
	return fmt.Sprintf("%s %s", col, dir)
}

// ApplyPagination applies limit/offset from a page token.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(page.Limit()).Offset(page.Offset())
	})
}
