package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductSales struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SalesCount  int64           `json:"sales_count"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type PeriodTotals struct {
	Period      string          `json:"period"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	TotalCount  int64           `json:"total_count"`
}

type Point struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	End    time.Time       `json:"end"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
	Count  int64           `json:"count"`
}

// TimeSeries always holds one point per requested bucket, oldest first.
// The summary totals are only filled for custom ranges.
type TimeSeries struct {
	Period      string           `json:"period"`
	Granularity string           `json:"granularity"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Points      []Point          `json:"points"`
	TotalSales  *decimal.Decimal `json:"total_sales,omitempty"`
	TotalProfit *decimal.Decimal `json:"total_profit,omitempty"`
	TotalCount  *int64           `json:"total_count,omitempty"`
}

type Region struct {
	Region        string `json:"region"`
	CustomerCount int64  `json:"customer_count"`
	OrderCount    int64  `json:"order_count"`
}

type RegionalBreakdown struct {
	City           string   `json:"city"`
	TotalCustomers int64    `json:"total_customers"`
	TotalOrders    int64    `json:"total_orders"`
	Regions        []Region `json:"regions"`
}

type Dashboard struct {
	TodaySales  decimal.Decimal `json:"today_sales"`
	TodayProfit decimal.Decimal `json:"today_profit"`
	TodayOrders int64           `json:"today_orders"`
	MonthSales  decimal.Decimal `json:"month_sales"`
	MonthProfit decimal.Decimal `json:"month_profit"`
	TopProducts []ProductSales  `json:"top_products"`
	Trend       []Point         `json:"trend"`
}
