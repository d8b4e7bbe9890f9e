package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCustomerName = "Unknown customer"

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement:false"`
	CustomerName    string          `gorm:"type:text;not null"`
	CustomerPhone   string          `gorm:"type:text"`
	CustomerCity    string          `gorm:"type:varchar(100);index:idx_orders_city_region"`
	CustomerState   string          `gorm:"type:text"`
	CustomerRegion  string          `gorm:"type:varchar(100);index:idx_orders_city_region"`
	CustomerAddress string          `gorm:"type:text"`
	OrderDate       time.Time       `gorm:"not null;index:idx_orders_order_date"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalProfit     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is an immutable priced line. Price is frozen from the catalog at
// creation; FinalPrice and Profit are always derived through PriceItem.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false"`
	OrderID     int64           `gorm:"not null;index:idx_order_items_order_id"`
	ProductID   int64           `gorm:"not null;index:idx_order_items_product_id"`
	ProductName string          `gorm:"type:text;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FinalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Profit      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// Customer carries display-only buyer fields; none are validated for
// uniqueness.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	State   string `json:"state"`
	Region  string `json:"region"`
	Address string `json:"address"`
}
