package domain

import "github.com/shopspring/decimal"

// PricedItem is the derived money of one order line.
type PricedItem struct {
	Price      decimal.Decimal
	FinalPrice decimal.Decimal
	Profit     decimal.Decimal
}

// PriceItem charges salePrice when set, else unitPrice, floors the discounted
// amount at zero and measures profit against unitPrice. Profit is not floored.
func PriceItem(unitPrice decimal.Decimal, salePrice decimal.NullDecimal, discount decimal.Decimal) PricedItem {
	price := unitPrice
	if salePrice.Valid {
		price = salePrice.Decimal
	}
	price = price.Round(2)

	final := price.Sub(discount.Round(2))
	if final.IsNegative() {
		final = decimal.Zero
	}
	return PricedItem{
		Price:      price,
		FinalPrice: final,
		Profit:     final.Sub(unitPrice.Round(2)),
	}
}

// DiscountPercent is discount relative to price, rounded to two places.
func DiscountPercent(price, discount decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return discount.Div(price).Mul(decimal.NewFromInt(100)).Round(2)
}

// Totals sums final price and profit across items.
func Totals(items []OrderItem) (decimal.Decimal, decimal.Decimal) {
	total, profit := decimal.Zero, decimal.Zero
	for _, item := range items {
		total = total.Add(item.FinalPrice)
		profit = profit.Add(item.Profit)
	}
	return total, profit
}
