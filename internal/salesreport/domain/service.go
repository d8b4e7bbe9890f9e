package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	RevenueTotal(ctx context.Context) (decimal.Decimal, error)
	ProfitTotal(ctx context.Context) (decimal.Decimal, error)
	SalesByProduct(ctx context.Context) ([]ProductSales, error)
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
	PeriodTotals(ctx context.Context, req RangeRequest) (*PeriodTotals, error)
	TimeSeries(ctx context.Context, req RangeRequest) (*TimeSeries, error)
	RegionalBreakdown(ctx context.Context, city string) (*RegionalBreakdown, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

// RangeRequest names a period or, with Period "custom" or empty, an inclusive
// pair of YYYY-MM-DD dates.
type RangeRequest struct {
	Period string `form:"period"`
	Start  string `form:"start"`
	End    string `form:"end"`
}

var ErrInvalidLimit = errors.New("invalid_limit")
