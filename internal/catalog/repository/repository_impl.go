package repository

import (
	"context"

	"github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/pkg/db/option"
	"gorm.io/gorm"
)

const productColumns = `id, code, name, description, type, branch, serial_number,
	unit_price, sale_price, attributes, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Code,
		product.Name,
		product.Description,
		product.Type,
		product.Branch,
		product.SerialNumber,
		product.UnitPrice,
		product.SalePrice,
		product.Attributes,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT `+productColumns+` FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Branch != "" {
		stmt = stmt.Where("branch = ?", filter.Branch)
	}

	sort := option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"unit_price": true,
	})
	if sort.Column == "" {
		sort = option.SortBy{Column: "created_at", Desc: true}
	}
	stmt = option.Apply(stmt,
		option.WithSortBy(sort),
		option.WithSortBy(option.SortBy{Column: "id", Desc: sort.Desc}),
		option.WithLimit(filter.Limit),
	)

	var items []domain.Product
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, description = ?, type = ?, branch = ?, serial_number = ?,
		     unit_price = ?, sale_price = ?, attributes = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Description,
		product.Type,
		product.Branch,
		product.SerialNumber,
		product.UnitPrice,
		product.SalePrice,
		product.Attributes,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) CountOrderItems(ctx context.Context, db *gorm.DB, productID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM order_items WHERE product_id = ?`,
		productID,
	).Scan(&count).Error
	return count, err
}
