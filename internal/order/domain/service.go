package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesledger/pkg/db/pagination"
)

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, id string) (*OrderResponse, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error)
	DeleteOrder(ctx context.Context, id string) error
}

// ItemRequest keeps the discount as text so malformed amounts are rejected
// by the ledger rather than by the transport decoder.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Discount  string `json:"discount"`
}

type CreateOrderRequest struct {
	Customer Customer      `json:"customer"`
	Items    []ItemRequest `json:"items"`
}

type ListOrdersRequest struct {
	pagination.Pagination
	City   string
	Region string
	From   *time.Time
	To     *time.Time
}

type ItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Price           decimal.Decimal `json:"price"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Profit          decimal.Decimal `json:"profit"`
	CreatedAt       time.Time       `json:"created_at"`
}

type OrderResponse struct {
	ID          string          `json:"id"`
	Customer    Customer        `json:"customer"`
	OrderDate   time.Time       `json:"order_date"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	Items       []ItemResponse  `json:"items,omitempty"`
}

type ListOrdersResponse struct {
	Orders   []OrderResponse     `json:"orders"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrEmptyItems       = errors.New("empty_items")
	ErrInvalidProductID = errors.New("invalid_product_id")
	ErrInvalidDiscount  = errors.New("invalid_discount")
	ErrInvalidRange     = errors.New("invalid_range")
	ErrNotFound         = errors.New("not_found")
	ErrProductNotFound  = errors.New("product_not_found")
)
