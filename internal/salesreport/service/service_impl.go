package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesledger/internal/clock"
	"github.com/smallbiznis/salesledger/internal/config"
	"github.com/smallbiznis/salesledger/internal/observability/metrics"
	"github.com/smallbiznis/salesledger/internal/salesreport/domain"
	"github.com/smallbiznis/salesledger/internal/salesreport/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Reporting *config.ReportingConfigHolder `optional:"true"`
	Metrics   *metrics.Metrics              `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	reporting *config.ReportingConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("salesreport.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		reporting: p.Reporting,
		metrics:   p.Metrics,
	}
}

func (s *Service) RevenueTotal(ctx context.Context) (decimal.Decimal, error) {
	defer s.observe(ctx, "revenue_total", "", time.Now())

	total, err := s.repo.SumFinalPrice(ctx, s.db)
	if err != nil {
		return decimal.Zero, err
	}
	return money(total), nil
}

func (s *Service) ProfitTotal(ctx context.Context) (decimal.Decimal, error) {
	defer s.observe(ctx, "profit_total", "", time.Now())

	total, err := s.repo.SumProfit(ctx, s.db)
	if err != nil {
		return decimal.Zero, err
	}
	return money(total), nil
}

func (s *Service) SalesByProduct(ctx context.Context) ([]domain.ProductSales, error) {
	defer s.observe(ctx, "sales_by_product", "", time.Now())
	return s.productSales(ctx, 0)
}

// TopProducts returns the best sellers by item count. A zero limit uses the
// configured default.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	defer s.observe(ctx, "top_products", "", time.Now())

	cfg := s.reporting.Get()
	if limit == 0 {
		limit = cfg.TopProductsDefault
	}
	if limit < 0 || limit > cfg.TopProductsMax {
		return nil, domain.ErrInvalidLimit
	}
	return s.productSales(ctx, limit)
}

// PeriodTotals sums the resolved range. "today" means the calendar day in
// the reporting timezone, the same bounds the dashboard uses, while its
// time series stays a trailing 24 hours.
func (s *Service) PeriodTotals(ctx context.Context, req domain.RangeRequest) (*domain.PeriodTotals, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, "period_totals", string(r.Period), time.Now())

	start, end := r.Start, r.End
	if r.Period == period.Today {
		start, end = period.Day(s.clock.Now(), s.reporting.Get().Location())
	}

	row, err := s.repo.RangeTotals(ctx, s.db, start, end)
	if err != nil {
		return nil, err
	}
	return &domain.PeriodTotals{
		Period:      string(r.Period),
		Start:       start,
		End:         end,
		TotalSales:  money(row.Sales),
		TotalProfit: money(row.Profit),
		TotalCount:  row.OrderCount,
	}, nil
}

func (s *Service) TimeSeries(ctx context.Context, req domain.RangeRequest) (*domain.TimeSeries, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, "time_series", string(r.Period), time.Now())

	points, err := s.series(ctx, s.db, r.Buckets)
	if err != nil {
		return nil, err
	}

	out := &domain.TimeSeries{
		Period:      string(r.Period),
		Granularity: string(r.Granularity),
		Start:       r.Start,
		End:         r.End,
		Points:      points,
	}
	if r.Period == period.Custom {
		sales, profit := decimal.Zero, decimal.Zero
		var count int64
		for _, p := range points {
			sales = sales.Add(p.Sales)
			profit = profit.Add(p.Profit)
			count += p.Count
		}
		out.TotalSales = &sales
		out.TotalProfit = &profit
		out.TotalCount = &count
	}
	return out, nil
}

// RegionalBreakdown groups one city's orders by region. Orders without a
// region are left out rather than reported as unknown.
func (s *Service) RegionalBreakdown(ctx context.Context, city string) (*domain.RegionalBreakdown, error) {
	defer s.observe(ctx, "regional_breakdown", "", time.Now())

	city = strings.TrimSpace(city)
	if city == "" {
		city = s.reporting.Get().DefaultCity
	}

	rows, err := s.repo.Regions(ctx, s.db, city)
	if err != nil {
		return nil, err
	}

	out := &domain.RegionalBreakdown{City: city, Regions: make([]domain.Region, 0, len(rows))}
	for _, row := range rows {
		out.Regions = append(out.Regions, domain.Region{
			Region:        row.Region,
			CustomerCount: row.CustomerCount,
			OrderCount:    row.OrderCount,
		})
		out.TotalCustomers += row.CustomerCount
		out.TotalOrders += row.OrderCount
	}
	return out, nil
}

// Dashboard runs its reads concurrently. They share no transaction, so a
// write landing mid-request may show in one section and not another.
func (s *Service) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	defer s.observe(ctx, "dashboard", "", time.Now())

	cfg := s.reporting.Get()
	loc := cfg.Location()
	now := s.clock.Now()

	dayStart, dayEnd := period.Day(now, loc)
	monthStart, monthEnd := period.CalendarMonth(now, loc)
	trend := period.TrailingDays(now, loc, cfg.DashboardTrendDays)

	var (
		today, month domain.TotalsRow
		top          []domain.ProductSales
		points       []domain.Point
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := s.repo.RangeTotals(gctx, s.db, dayStart, dayEnd)
		today = row
		return err
	})
	g.Go(func() error {
		row, err := s.repo.RangeTotals(gctx, s.db, monthStart, monthEnd)
		month = row
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.productSales(gctx, cfg.DashboardTopN)
		return err
	})
	g.Go(func() error {
		var err error
		points, err = s.series(gctx, s.db, trend.Buckets)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("dashboard read failed", zap.Error(err))
		return nil, err
	}

	return &domain.Dashboard{
		TodaySales:  money(today.Sales),
		TodayProfit: money(today.Profit),
		TodayOrders: today.OrderCount,
		MonthSales:  money(month.Sales),
		MonthProfit: money(month.Profit),
		TopProducts: top,
		Trend:       points,
	}, nil
}

func (s *Service) resolve(req domain.RangeRequest) (period.Range, error) {
	cfg := s.reporting.Get()
	return period.Resolve(s.clock.Now(), cfg.Location(), period.Request{
		Period:  req.Period,
		Start:   req.Start,
		End:     req.End,
		MaxDays: cfg.MaxCustomRangeDays,
	})
}

func (s *Service) productSales(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	rows, err := s.repo.ProductSales(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProductSales, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ProductSales{
			ProductID:   snowflake.ID(row.ProductID).String(),
			ProductName: row.ProductName,
			SalesCount:  row.SalesCount,
			Revenue:     money(row.Revenue),
		})
	}
	return out, nil
}

// series merges the grouped bucket sums onto the full bucket list so every
// bucket appears, zero-filled when it had no orders.
func (s *Service) series(ctx context.Context, db *gorm.DB, buckets []period.Bucket) ([]domain.Point, error) {
	rows, err := s.repo.BucketTotals(ctx, db, buckets)
	if err != nil {
		return nil, err
	}

	points := make([]domain.Point, len(buckets))
	for i, b := range buckets {
		points[i] = domain.Point{
			Label:  b.Label,
			Start:  b.Start,
			End:    b.End,
			Sales:  money(decimal.Zero),
			Profit: money(decimal.Zero),
		}
	}
	for _, row := range rows {
		if row.BucketIndex < 0 || row.BucketIndex >= len(points) {
			s.log.Warn("bucket index out of range", zap.Int("bucket_index", row.BucketIndex))
			continue
		}
		p := &points[row.BucketIndex]
		p.Sales = money(row.Sales)
		p.Profit = money(row.Profit)
		p.Count = row.OrderCount
	}
	return points, nil
}

func (s *Service) observe(ctx context.Context, report, p string, started time.Time) {
	s.metrics.RecordReport(ctx, report, p, time.Since(started))
}

func money(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
