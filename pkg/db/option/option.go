package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before it is executed.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type SortBy struct {
	Column string
	Desc   bool
}

// WithQuerySortBy validates a caller supplied column against allowed and
// normalizes the direction. Unknown columns yield a zero SortBy.
func WithQuerySortBy(column, order string, allowed map[string]bool) SortBy {
	column = strings.ToLower(strings.TrimSpace(column))
	if column == "" || !allowed[column] {
		return SortBy{}
	}
	return SortBy{
		Column: column,
		Desc:   !strings.EqualFold(strings.TrimSpace(order), "asc"),
	}
}

func WithSortBy(sort SortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if sort.Column == "" {
			return db
		}
		direction := "ASC"
		if sort.Desc {
			direction = "DESC"
		}
		return db.Order(fmt.Sprintf("%s %s", sort.Column, direction))
	})
}

func WithLimit(limit int) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func Apply(db *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		db = opt.Apply(db)
	}
	return db
}
