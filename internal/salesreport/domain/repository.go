package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesledger/internal/salesreport/period"
	"gorm.io/gorm"
)

type ProductSalesRow struct {
	ProductID   int64
	ProductName string
	SalesCount  int64
	Revenue     decimal.Decimal
}

type TotalsRow struct {
	Sales      decimal.Decimal
	Profit     decimal.Decimal
	OrderCount int64
}

type BucketRow struct {
	BucketIndex int
	Sales       decimal.Decimal
	Profit      decimal.Decimal
	OrderCount  int64
}

type RegionRow struct {
	Region        string
	CustomerCount int64
	OrderCount    int64
}

// Repository is read-only; every method is a single aggregate query.
type Repository interface {
	SumFinalPrice(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
	SumProfit(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
	ProductSales(ctx context.Context, db *gorm.DB, limit int) ([]ProductSalesRow, error)
	RangeTotals(ctx context.Context, db *gorm.DB, start, end time.Time) (TotalsRow, error)
	BucketTotals(ctx context.Context, db *gorm.DB, buckets []period.Bucket) ([]BucketRow, error)
	Regions(ctx context.Context, db *gorm.DB, city string) ([]RegionRow, error)
}
