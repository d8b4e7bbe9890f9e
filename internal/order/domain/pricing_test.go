package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestPriceItem(t *testing.T) {
	cases := []struct {
		name      string
		unit      string
		sale      *string
		discount  string
		wantPrice string
		wantFinal string
		wantProf  string
	}{
		{name: "sale price with discount", unit: "1000", sale: ptr("900"), discount: "100", wantPrice: "900", wantFinal: "800", wantProf: "-200"},
		{name: "discount exceeds price", unit: "500", discount: "1000", wantPrice: "500", wantFinal: "0", wantProf: "-500"},
		{name: "no discount", unit: "250.50", sale: ptr("300"), discount: "0", wantPrice: "300", wantFinal: "300", wantProf: "49.50"},
		{name: "discount equals price", unit: "10", discount: "10", wantPrice: "10", wantFinal: "0", wantProf: "-10"},
		{name: "zero sale price", unit: "40", sale: ptr("0"), discount: "5", wantPrice: "0", wantFinal: "0", wantProf: "-40"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sale := decimal.NullDecimal{}
			if tc.sale != nil {
				sale = decimal.NewNullDecimal(d(*tc.sale))
			}
			got := PriceItem(d(tc.unit), sale, d(tc.discount))
			assert.True(t, got.Price.Equal(d(tc.wantPrice)), "price %s", got.Price)
			assert.True(t, got.FinalPrice.Equal(d(tc.wantFinal)), "final %s", got.FinalPrice)
			assert.True(t, got.Profit.Equal(d(tc.wantProf)), "profit %s", got.Profit)
			assert.False(t, got.FinalPrice.IsNegative())
		})
	}
}

func TestDiscountPercent(t *testing.T) {
	assert.True(t, DiscountPercent(d("900"), d("100")).Equal(d("11.11")))
	assert.True(t, DiscountPercent(d("0"), d("100")).IsZero())
	assert.True(t, DiscountPercent(d("200"), d("50")).Equal(d("25")))
}

func TestTotals(t *testing.T) {
	items := []OrderItem{
		{FinalPrice: d("800"), Profit: d("-200")},
		{FinalPrice: d("0"), Profit: d("-500")},
		{FinalPrice: d("120.25"), Profit: d("20.25")},
	}
	total, profit := Totals(items)
	assert.True(t, total.Equal(d("920.25")))
	assert.True(t, profit.Equal(d("-679.75")))

	total, profit = Totals(nil)
	assert.True(t, total.IsZero())
	assert.True(t, profit.IsZero())
}

func ptr(s string) *string { return &s }
