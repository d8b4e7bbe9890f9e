package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/internal/catalog/repository"
	"github.com/smallbiznis/salesledger/internal/clock"
	"github.com/smallbiznis/salesledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type orderItemRef struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	ProductID int64
}

func (orderItemRef) TableName() string { return "order_items" }

func setupCatalog(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}, &orderItemRef{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, conn, clk
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func carpetSize() map[string]any { return map[string]any{"size": "2x3"} }

func tableauSize() map[string]any { return map[string]any{"length": "70", "width": "50"} }

func TestCreateProductGeneratesCode(t *testing.T) {
	svc, _, _ := setupCatalog(t)
	ctx := context.Background()

	sale := price("900")
	resp, err := svc.Create(ctx, domain.CreateRequest{
		Name:      "Tabriz Mahi",
		Type:      "carpet",
		Branch:    "tabriz",
		UnitPrice: price("1000"),
		SalePrice: &sale,
		Attributes: map[string]any{
			"size":     "200x300",
			"crop_sex": "chele abrisham",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, resp.Code, "tabriz-mahi-")
	assert.True(t, resp.EffectivePrice.Equal(price("900")))
	require.NotNil(t, resp.SalePrice)
	assert.True(t, resp.SalePrice.Equal(price("900")))

	got, err := svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Code, got.Code)
	assert.True(t, got.UnitPrice.Equal(price("1000")))
	assert.Equal(t, "200x300", got.Attributes["size"])
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := setupCatalog(t)
	ctx := context.Background()
	negative := price("-1")

	cases := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"missing name", domain.CreateRequest{Type: "carpet", Branch: "tabriz"}, domain.ErrInvalidName},
		{"bad type", domain.CreateRequest{Name: "x", Type: "rug", Branch: "tabriz"}, domain.ErrInvalidType},
		{"branch of other type", domain.CreateRequest{Name: "x", Type: "tableau", Branch: "tabriz"}, domain.ErrInvalidBranch},
		{"negative unit price", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz", UnitPrice: negative}, domain.ErrInvalidUnitPrice},
		{"negative sale price", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz", SalePrice: &negative}, domain.ErrInvalidSalePrice},
		{"bad crop", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz", Attributes: map[string]any{"size": "2x3", "crop_sex": "wool"}}, domain.ErrInvalidAttributes},
		{"carpet without size", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz"}, domain.ErrInvalidAttributes},
		{"carpet with blank size", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz", Attributes: map[string]any{"size": "  "}}, domain.ErrInvalidAttributes},
		{"carpet with length", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz", Attributes: map[string]any{"size": "2x3", "length": "300"}}, domain.ErrInvalidAttributes},
		{"carpet with width", domain.CreateRequest{Name: "x", Type: "carpet", Branch: "tabriz", Attributes: map[string]any{"size": "2x3", "width": 200.0}}, domain.ErrInvalidAttributes},
		{"tableau without width", domain.CreateRequest{Name: "x", Type: "tableau", Branch: "gol", Attributes: map[string]any{"length": "70"}}, domain.ErrInvalidAttributes},
		{"tableau with size", domain.CreateRequest{Name: "x", Type: "tableau", Branch: "gol", Attributes: map[string]any{"length": "70", "width": "50", "size": "2x3"}}, domain.ErrInvalidAttributes},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateProductDuplicateCode(t *testing.T) {
	svc, _, _ := setupCatalog(t)
	ctx := context.Background()

	req := domain.CreateRequest{Code: "gol-01", Name: "Gol", Type: "tableau", Branch: "gol", UnitPrice: price("50"), Attributes: tableauSize()}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _, clk := setupCatalog(t)
	ctx := context.Background()

	sale := price("80")
	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Qom Silk", Type: "carpet", Branch: "qom", UnitPrice: price("100"), SalePrice: &sale, Attributes: carpetSize()})
	require.NoError(t, err)

	clk.Advance(time.Hour)
	newPrice := price("120.456")
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, UnitPrice: &newPrice, ClearSalePrice: true})
	require.NoError(t, err)

	assert.Equal(t, "Qom Silk", updated.Name)
	assert.True(t, updated.UnitPrice.Equal(price("120.46")))
	assert.Nil(t, updated.SalePrice)
	assert.True(t, updated.EffectivePrice.Equal(price("120.46")))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	otherType := "tableau"
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Type: &otherType})
	assert.ErrorIs(t, err, domain.ErrInvalidBranch)

	otherBranch := "gol"
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Type: &otherType, Branch: &otherBranch})
	assert.ErrorIs(t, err, domain.ErrInvalidAttributes)

	updated, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Type: &otherType, Branch: &otherBranch, Attributes: tableauSize()})
	require.NoError(t, err)
	assert.Equal(t, "tableau", updated.Type)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Attributes: map[string]any{"length": "70", "width": "50", "size": "1x1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidAttributes)
}

func TestListProductsFiltersByType(t *testing.T) {
	svc, _, clk := setupCatalog(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "A", Type: "carpet", Branch: "arak", UnitPrice: price("10"), Attributes: carpetSize()})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "B", Type: "tableau", Branch: "manzare", UnitPrice: price("20"), Attributes: tableauSize()})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "C", Type: "carpet", Branch: "kashan", UnitPrice: price("30"), Attributes: carpetSize()})
	require.NoError(t, err)

	items, err := svc.List(ctx, domain.ListRequest{Type: "carpet"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "C", items[0].Name)
	assert.Equal(t, "A", items[1].Name)

	items, err = svc.List(ctx, domain.ListRequest{SortBy: "unit_price", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "A", items[0].Name)

	_, err = svc.List(ctx, domain.ListRequest{Type: "rug"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestDeleteProductWithSalesIsRejected(t *testing.T) {
	svc, conn, _ := setupCatalog(t)
	ctx := context.Background()

	sold, err := svc.Create(ctx, domain.CreateRequest{Name: "Sold", Type: "carpet", Branch: "naein", UnitPrice: price("10"), Attributes: carpetSize()})
	require.NoError(t, err)
	unsold, err := svc.Create(ctx, domain.CreateRequest{Name: "Unsold", Type: "carpet", Branch: "naein", UnitPrice: price("10"), Attributes: carpetSize()})
	require.NoError(t, err)

	soldID, err := snowflake.ParseString(sold.ID)
	require.NoError(t, err)
	require.NoError(t, conn.Create(&orderItemRef{ID: 1, ProductID: soldID.Int64()}).Error)

	assert.ErrorIs(t, svc.Delete(ctx, sold.ID), domain.ErrProductInUse)
	_, err = svc.Get(ctx, sold.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, unsold.ID))
	_, err = svc.Get(ctx, unsold.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, unsold.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "abc"), domain.ErrInvalidID)
}

func TestGetProductNotFound(t *testing.T) {
	svc, conn, _ := setupCatalog(t)
	_, err := svc.GetProduct(context.Background(), conn, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
