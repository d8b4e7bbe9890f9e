package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	CountOrderItems(ctx context.Context, db *gorm.DB, productID int64) (int64, error)
}
