package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/salesledger/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/salesledger/internal/catalog/service"
	"github.com/smallbiznis/salesledger/internal/clock"
	"github.com/smallbiznis/salesledger/internal/order/domain"
	"github.com/smallbiznis/salesledger/internal/order/repository"
	"github.com/smallbiznis/salesledger/pkg/db"
	"github.com/smallbiznis/salesledger/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	orders  domain.Service
	catalog catalogdomain.Service
	db      *gorm.DB
	clock   *clock.FakeClock
}

func setupLedger(t *testing.T) *ledgerFixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&catalogdomain.Product{}, &domain.Order{}, &domain.OrderItem{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	catalog := catalogservice.New(catalogservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  catalogrepo.Provide(),
	})
	orders := New(Params{
		DB:      conn,
		Log:     log,
		GenID:   node,
		Clock:   clk,
		Repo:    repository.Provide(),
		Catalog: catalog,
	})
	return &ledgerFixture{orders: orders, catalog: catalog, db: conn, clock: clk}
}

func (f *ledgerFixture) product(t *testing.T, name, unit string, sale *string) string {
	t.Helper()
	req := catalogdomain.CreateRequest{
		Name:       name,
		Type:       "carpet",
		Branch:     "tabriz",
		UnitPrice:  decimal.RequireFromString(unit),
		Attributes: map[string]any{"size": "2x3"},
	}
	if sale != nil {
		v := decimal.RequireFromString(*sale)
		req.SalePrice = &v
	}
	resp, err := f.catalog.Create(context.Background(), req)
	require.NoError(t, err)
	return resp.ID
}

func (f *ledgerFixture) counts(t *testing.T) (int64, int64) {
	t.Helper()
	var orders, items int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&domain.OrderItem{}).Count(&items).Error)
	return orders, items
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func strPtr(s string) *string { return &s }

func TestCreateOrderSalePriceWithDiscount(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "1000", strPtr("900"))

	resp, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Customer: domain.Customer{Name: "Sara", City: "Tehran"},
		Items:    []domain.ItemRequest{{ProductID: p, Discount: "100"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	assert.True(t, item.Price.Equal(dec("900")))
	assert.True(t, item.FinalPrice.Equal(dec("800")))
	assert.True(t, item.Profit.Equal(dec("-200")))
	assert.Equal(t, "P", item.ProductName)
	assert.True(t, resp.TotalPrice.Equal(dec("800")))
	assert.True(t, resp.TotalProfit.Equal(dec("-200")))
	assert.True(t, f.clock.Now().Equal(resp.OrderDate))

	stored, err := f.orders.GetOrder(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(dec("800")))
	assert.True(t, stored.TotalProfit.Equal(dec("-200")))
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].DiscountPercent.Equal(dec("11.11")))
}

func TestCreateOrderDiscountExceedsPrice(t *testing.T) {
	f := setupLedger(t)
	q := f.product(t, "Q", "500", nil)

	resp, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.ItemRequest{{ProductID: q, Discount: "1000"}},
	})
	require.NoError(t, err)

	item := resp.Items[0]
	assert.True(t, item.Price.Equal(dec("500")))
	assert.True(t, item.FinalPrice.IsZero())
	assert.True(t, item.Profit.Equal(dec("-500")))
	assert.Equal(t, domain.DefaultCustomerName, resp.Customer.Name)
}

func TestCreateOrderTotalsMatchItems(t *testing.T) {
	f := setupLedger(t)
	a := f.product(t, "A", "100", strPtr("150"))
	b := f.product(t, "B", "40.50", nil)

	resp, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.ItemRequest{
			{ProductID: a, Discount: "10"},
			{ProductID: b},
			{ProductID: a, Discount: "0.005"},
		},
	})
	require.NoError(t, err)

	stored, err := f.orders.GetOrder(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)

	total, profit := decimal.Zero, decimal.Zero
	for _, item := range stored.Items {
		want := item.Price.Sub(item.Discount)
		if want.IsNegative() {
			want = decimal.Zero
		}
		assert.True(t, item.FinalPrice.Equal(want))
		total = total.Add(item.FinalPrice)
		profit = profit.Add(item.Profit)
	}
	assert.True(t, stored.TotalPrice.Equal(total), "total %s != %s", stored.TotalPrice, total)
	assert.True(t, stored.TotalProfit.Equal(profit), "profit %s != %s", stored.TotalProfit, profit)
	assert.True(t, stored.TotalPrice.Equal(dec("330.49")))
}

func TestCreateOrderUnknownProductRollsBack(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "100", nil)

	_, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.ItemRequest{
			{ProductID: p, Discount: "0"},
			{ProductID: "987654321", Discount: "0"},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))

	orders, items := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "100", nil)

	cases := []struct {
		name  string
		items []domain.ItemRequest
		want  error
	}{
		{"empty items", nil, domain.ErrEmptyItems},
		{"malformed discount", []domain.ItemRequest{{ProductID: p, Discount: "ten"}}, domain.ErrInvalidDiscount},
		{"negative discount", []domain.ItemRequest{{ProductID: p, Discount: "-1"}}, domain.ErrInvalidDiscount},
		{"discount beyond column range", []domain.ItemRequest{{ProductID: p, Discount: "1e12"}}, domain.ErrInvalidDiscount},
		{"discount rounding past range", []domain.ItemRequest{{ProductID: p, Discount: "9999999999.999"}}, domain.ErrInvalidDiscount},
		{"missing product", []domain.ItemRequest{{Discount: "1"}}, domain.ErrInvalidProductID},
		{"malformed product", []domain.ItemRequest{{ProductID: "abc"}}, domain.ErrInvalidProductID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{Items: tc.items})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	orders, items := f.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestCreateOrderAcceptsLargestDiscount(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "100", nil)

	resp, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.ItemRequest{{ProductID: p, Discount: "9999999999.99"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].FinalPrice.IsZero())
	assert.True(t, dec("9999999999.99").Equal(resp.Items[0].Discount))
}

func TestOrderPriceIsFrozenAtCreation(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "100", strPtr("120"))

	resp, err := f.orders.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.ItemRequest{{ProductID: p}},
	})
	require.NoError(t, err)

	newSale := dec("999")
	_, err = f.catalog.Update(context.Background(), catalogdomain.UpdateRequest{ID: p, SalePrice: &newSale})
	require.NoError(t, err)

	stored, err := f.orders.GetOrder(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].Price.Equal(dec("120")))
	assert.True(t, stored.TotalPrice.Equal(dec("120")))
}

func TestDeleteOrder(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "100", nil)
	ctx := context.Background()

	err := f.orders.DeleteOrder(ctx, "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	keep, err := f.orders.CreateOrder(ctx, domain.CreateOrderRequest{
		Items: []domain.ItemRequest{{ProductID: p}},
	})
	require.NoError(t, err)
	gone, err := f.orders.CreateOrder(ctx, domain.CreateOrderRequest{
		Items: []domain.ItemRequest{{ProductID: p}, {ProductID: p, Discount: "5"}},
	})
	require.NoError(t, err)

	require.NoError(t, f.orders.DeleteOrder(ctx, gone.ID))

	orders, items := f.counts(t)
	assert.EqualValues(t, 1, orders)
	assert.EqualValues(t, 1, items)

	_, err = f.orders.GetOrder(ctx, gone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.orders.GetOrder(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.orders.DeleteOrder(ctx, gone.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.orders.DeleteOrder(ctx, "nope"), domain.ErrInvalidID)
}

func TestListOrdersPaginates(t *testing.T) {
	f := setupLedger(t)
	p := f.product(t, "P", "100", nil)
	ctx := context.Background()

	var created []string
	for i := 0; i < 3; i++ {
		resp, err := f.orders.CreateOrder(ctx, domain.CreateOrderRequest{
			Customer: domain.Customer{City: "Tehran"},
			Items:    []domain.ItemRequest{{ProductID: p}},
		})
		require.NoError(t, err)
		created = append(created, resp.ID)
		f.clock.Advance(time.Hour)
	}

	first, err := f.orders.ListOrders(ctx, domain.ListOrdersRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	assert.True(t, first.PageInfo.HasMore)
	assert.Equal(t, created[2], first.Orders[0].ID)
	assert.Equal(t, created[1], first.Orders[1].ID)
	assert.Len(t, first.Orders[0].Items, 1)

	second, err := f.orders.ListOrders(ctx, domain.ListOrdersRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.False(t, second.PageInfo.HasMore)
	assert.Equal(t, created[0], second.Orders[0].ID)

	_, err = f.orders.ListOrders(ctx, domain.ListOrdersRequest{
		Pagination: pagination.Pagination{PageToken: "%%%"},
	})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)

	from := f.clock.Now()
	to := from.Add(-time.Hour)
	_, err = f.orders.ListOrders(ctx, domain.ListOrdersRequest{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
