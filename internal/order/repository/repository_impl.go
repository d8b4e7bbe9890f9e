package repository

import (
	"context"

	"github.com/smallbiznis/salesledger/internal/order/domain"
	"gorm.io/gorm"
)

const orderColumns = `id, customer_name, customer_phone, customer_city, customer_state,
	customer_region, customer_address, order_date, total_price, total_profit`

const itemColumns = `id, order_id, product_id, product_name, price, discount,
	final_price, profit, created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertOrder(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerCity,
		order.CustomerState,
		order.CustomerRegion,
		order.CustomerAddress,
		order.OrderDate,
		order.TotalPrice,
		order.TotalProfit,
	).Error
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.OrderItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO order_items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.Price,
		item.Discount,
		item.FinalPrice,
		item.Profit,
		item.CreatedAt,
	).Error
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET total_price = ?, total_profit = ? WHERE id = ?`,
		order.TotalPrice,
		order.TotalProfit,
		order.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]domain.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM order_items
		 WHERE order_id IN ?
		 ORDER BY order_id ASC, id ASC`,
		orderIDs,
	).Scan(&items).Error
	return items, err
}

// List returns orders newest first, keyed by (order_date, id) for cursor
// pagination. Callers pass Limit+1 to detect a following page.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{}).Select(orderColumns)
	if filter.City != "" {
		stmt = stmt.Where("customer_city = ?", filter.City)
	}
	if filter.Region != "" {
		stmt = stmt.Where("customer_region = ?", filter.Region)
	}
	if filter.From != nil {
		stmt = stmt.Where("order_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("order_date < ?", *filter.To)
	}
	if filter.CursorDate != nil {
		stmt = stmt.Where("(order_date < ? OR (order_date = ? AND id < ?))",
			*filter.CursorDate, *filter.CursorDate, filter.CursorID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var orders []domain.Order
	err := stmt.Order("order_date DESC").Order("id DESC").Find(&orders).Error
	return orders, err
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, orderID int64) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM order_items WHERE order_id = ?`, orderID)
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteOrder(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM orders WHERE id = ?`, id)
	return result.RowsAffected, result.Error
}
