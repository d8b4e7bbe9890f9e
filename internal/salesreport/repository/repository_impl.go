package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesledger/internal/salesreport/domain"
	"github.com/smallbiznis/salesledger/internal/salesreport/period"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) SumFinalPrice(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(final_price), 0) AS total FROM order_items`,
	).Scan(&row).Error
	return row.Total, err
}

func (r *repo) SumProfit(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total_profit), 0) AS total FROM orders`,
	).Scan(&row).Error
	return row.Total, err
}

// ProductSales groups items by product, most sold first. Ties fall back to
// product id so repeated calls return the same order. limit <= 0 returns all.
func (r *repo) ProductSales(ctx context.Context, db *gorm.DB, limit int) ([]domain.ProductSalesRow, error) {
	query := `SELECT product_id,
			MAX(product_name) AS product_name,
			COUNT(id) AS sales_count,
			COALESCE(SUM(final_price), 0) AS revenue
		FROM order_items
		GROUP BY product_id
		ORDER BY sales_count DESC, product_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []domain.ProductSalesRow
	err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *repo) RangeTotals(ctx context.Context, db *gorm.DB, start, end time.Time) (domain.TotalsRow, error) {
	var row domain.TotalsRow
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total_price), 0) AS sales,
			COALESCE(SUM(total_profit), 0) AS profit,
			COUNT(id) AS order_count
		FROM orders
		WHERE order_date >= ? AND order_date < ?`,
		start.UTC(), end.UTC(),
	).Scan(&row).Error
	return row, err
}

// BucketTotals sums orders per bucket in one grouped query. Buckets must be
// contiguous and ascending; empty buckets are absent from the result.
func (r *repo) BucketTotals(ctx context.Context, db *gorm.DB, buckets []period.Bucket) ([]domain.BucketRow, error) {
	if len(buckets) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(buckets)*2+2)
	sb.WriteString(`SELECT CASE`)
	for i, b := range buckets {
		sb.WriteString(` WHEN order_date >= ? AND order_date < ? THEN `)
		sb.WriteString(strconv.Itoa(i))
		args = append(args, b.Start.UTC(), b.End.UTC())
	}
	sb.WriteString(` END AS bucket_index,
			COALESCE(SUM(total_price), 0) AS sales,
			COALESCE(SUM(total_profit), 0) AS profit,
			COUNT(id) AS order_count
		FROM orders
		WHERE order_date >= ? AND order_date < ?
		GROUP BY bucket_index
		ORDER BY bucket_index ASC`)
	args = append(args, buckets[0].Start.UTC(), buckets[len(buckets)-1].End.UTC())

	var rows []domain.BucketRow
	err := db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error
	return rows, err
}

func (r *repo) Regions(ctx context.Context, db *gorm.DB, city string) ([]domain.RegionRow, error) {
	var rows []domain.RegionRow
	err := db.WithContext(ctx).Raw(
		`SELECT customer_region AS region,
			COUNT(DISTINCT customer_name) AS customer_count,
			COUNT(id) AS order_count
		FROM orders
		WHERE customer_city = ?
			AND customer_region IS NOT NULL
			AND TRIM(customer_region) <> ''
		GROUP BY customer_region
		ORDER BY customer_region ASC`,
		city,
	).Scan(&rows).Error
	return rows, err
}
