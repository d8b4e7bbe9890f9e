package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	City   string
	Region string
	From   *time.Time
	To     *time.Time

	CursorDate *time.Time
	CursorID   int64
	Limit      int
}

type Repository interface {
	InsertOrder(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItem(ctx context.Context, db *gorm.DB, item *OrderItem) error
	UpdateTotals(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	ListItems(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]OrderItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, error)
	DeleteItems(ctx context.Context, db *gorm.DB, orderID int64) (int64, error)
	DeleteOrder(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}
