package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/internal/clock"
	obslogger "github.com/smallbiznis/salesledger/internal/observability/logger"
	"github.com/smallbiznis/salesledger/internal/observability/metrics"
	"github.com/smallbiznis/salesledger/internal/observability/tracing"
	"github.com/smallbiznis/salesledger/internal/order/domain"
	"github.com/smallbiznis/salesledger/pkg/db/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("salesledger/order")

// maxMoney is the first value a decimal(12,2) column cannot hold.
var maxMoney = decimal.New(1, 10)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Catalog catalogdomain.Lookup
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	catalog catalogdomain.Lookup
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
		metrics: p.Metrics,
	}
}

type lineIntent struct {
	productID int64
	discount  decimal.Decimal
}

// CreateOrder prices and stores an order with all of its items in one
// transaction. Input is validated before the transaction opens; an unknown
// product rolls back everything written so far.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "order.create")
	defer span.End()

	lines, err := parseItems(req.Items)
	if err != nil {
		s.metrics.RecordOrderFailure(ctx, "create", err.Error())
		return nil, err
	}
	span.SetAttributes(tracing.SafeAttributes(
		attribute.Int("item_count", len(lines)),
		attribute.String("customer_city", strings.TrimSpace(req.Customer.City)),
	)...)

	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	order := &domain.Order{
		ID:              s.genID.Generate().Int64(),
		CustomerName:    normalizeCustomerName(req.Customer.Name),
		CustomerPhone:   strings.TrimSpace(req.Customer.Phone),
		CustomerCity:    strings.TrimSpace(req.Customer.City),
		CustomerState:   strings.TrimSpace(req.Customer.State),
		CustomerRegion:  strings.TrimSpace(req.Customer.Region),
		CustomerAddress: strings.TrimSpace(req.Customer.Address),
		OrderDate:       now,
		TotalPrice:      decimal.Zero,
		TotalProfit:     decimal.Zero,
	}
	items := make([]domain.OrderItem, 0, len(lines))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			return err
		}

		for _, line := range lines {
			product, err := s.catalog.GetProduct(ctx, tx, line.productID)
			if err != nil {
				if errors.Is(err, catalogdomain.ErrNotFound) {
					return fmt.Errorf("%w: %d", domain.ErrProductNotFound, line.productID)
				}
				return err
			}

			priced := domain.PriceItem(product.UnitPrice, product.SalePrice, line.discount)
			item := domain.OrderItem{
				ID:          s.genID.Generate().Int64(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       priced.Price,
				Discount:    line.discount,
				FinalPrice:  priced.FinalPrice,
				Profit:      priced.Profit,
				CreatedAt:   now,
			}
			if err := s.repo.InsertItem(ctx, tx, &item); err != nil {
				return err
			}
			items = append(items, item)
		}

		order.TotalPrice, order.TotalProfit = domain.Totals(items)
		return s.repo.UpdateTotals(ctx, tx, order)
	})
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "create order failed")
		s.metrics.RecordOrderFailure(ctx, "create", failureReason(err))
		return nil, err
	}

	s.metrics.RecordOrderCreated(ctx, len(items))
	obslogger.WithContext(ctx, s.log).Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int("item_count", len(items)),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
	)

	resp := toResponse(order, items)
	return &resp, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.OrderResponse, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, []int64{order.ID})
	if err != nil {
		return nil, err
	}

	resp := toResponse(order, items)
	return &resp, nil
}

func (s *Service) ListOrders(ctx context.Context, req domain.ListOrdersRequest) (*domain.ListOrdersResponse, error) {
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return nil, domain.ErrInvalidRange
	}

	limit := req.Size()
	filter := domain.ListFilter{
		City:   strings.TrimSpace(req.City),
		Region: strings.TrimSpace(req.Region),
		From:   utcPtr(req.From),
		To:     utcPtr(req.To),
		Limit:  limit + 1,
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, err
		}
		date, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		cursorID, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		date = date.UTC()
		filter.CursorDate = &date
		filter.CursorID = cursorID
	}

	rows, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	page, pageInfo, err := pagination.BuildCursorPageInfo(rows, limit, func(o domain.Order) pagination.Cursor {
		return pagination.Cursor{
			ID:        strconv.FormatInt(o.ID, 10),
			CreatedAt: o.OrderDate.UTC().Format(time.RFC3339Nano),
		}
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(page))
	for _, o := range page {
		ids = append(ids, o.ID)
	}
	items, err := s.repo.ListItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]domain.OrderItem, len(page))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	out := make([]domain.OrderResponse, 0, len(page))
	for i := range page {
		out = append(out, toResponse(&page[i], byOrder[page[i].ID]))
	}
	return &domain.ListOrdersResponse{Orders: out, PageInfo: pageInfo}, nil
}

// DeleteOrder removes an order and its items together. Deleting an order that
// does not exist, including one deleted earlier, yields ErrNotFound.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	orderID, err := parseID(id)
	if err != nil {
		return err
	}

	var removedItems int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.DeleteItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		affected, err := s.repo.DeleteOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		removedItems = n
		return nil
	})
	if err != nil {
		s.metrics.RecordOrderFailure(ctx, "delete", failureReason(err))
		return err
	}

	s.metrics.RecordOrderDeleted(ctx)
	obslogger.WithContext(ctx, s.log).Info("order deleted",
		zap.Int64("order_id", orderID),
		zap.Int64("items_removed", removedItems),
	)
	return nil
}

func parseItems(reqItems []domain.ItemRequest) ([]lineIntent, error) {
	if len(reqItems) == 0 {
		return nil, domain.ErrEmptyItems
	}

	lines := make([]lineIntent, 0, len(reqItems))
	for _, item := range reqItems {
		productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil || productID <= 0 {
			return nil, domain.ErrInvalidProductID
		}
		discount, err := parseDiscount(item.Discount)
		if err != nil {
			return nil, err
		}
		lines = append(lines, lineIntent{productID: productID.Int64(), discount: discount})
	}
	return lines, nil
}

func parseDiscount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero, domain.ErrInvalidDiscount
	}
	value = value.Round(2)
	if value.GreaterThanOrEqual(maxMoney) {
		return decimal.Zero, domain.ErrInvalidDiscount
	}
	return value, nil
}

func normalizeCustomerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.DefaultCustomerName
	}
	return name
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return domain.ErrProductNotFound.Error()
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound.Error()
	default:
		return "internal"
	}
}

func toResponse(order *domain.Order, items []domain.OrderItem) domain.OrderResponse {
	resp := domain.OrderResponse{
		ID: snowflake.ID(order.ID).String(),
		Customer: domain.Customer{
			Name:    order.CustomerName,
			Phone:   order.CustomerPhone,
			City:    order.CustomerCity,
			State:   order.CustomerState,
			Region:  order.CustomerRegion,
			Address: order.CustomerAddress,
		},
		OrderDate:   order.OrderDate.UTC(),
		TotalPrice:  order.TotalPrice,
		TotalProfit: order.TotalProfit,
	}
	if len(items) == 0 {
		return resp
	}

	resp.Items = make([]domain.ItemResponse, 0, len(items))
	for _, item := range items {
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:              snowflake.ID(item.ID).String(),
			ProductID:       snowflake.ID(item.ProductID).String(),
			ProductName:     item.ProductName,
			Price:           item.Price,
			Discount:        item.Discount,
			DiscountPercent: domain.DiscountPercent(item.Price, item.Discount),
			FinalPrice:      item.FinalPrice,
			Profit:          item.Profit,
			CreatedAt:       item.CreatedAt.UTC(),
		})
	}
	return resp
}
