package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Lookup is what the ledger needs from the catalog. db may be an open
// transaction.
type Lookup interface {
	GetProduct(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
}

type Service interface {
	Lookup

	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Type    string
	Branch  string
	SortBy  string
	OrderBy string
	Limit   int
}

type CreateRequest struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Type         string           `json:"type"`
	Branch       string           `json:"branch"`
	SerialNumber *string          `json:"serial_number"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	Attributes   map[string]any   `json:"attributes"`
}

type UpdateRequest struct {
	ID             string           `json:"-"`
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Type           *string          `json:"type"`
	Branch         *string          `json:"branch"`
	SerialNumber   *string          `json:"serial_number"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	ClearSalePrice bool             `json:"clear_sale_price"`
	Attributes     map[string]any   `json:"attributes"`
}

type Response struct {
	ID             string           `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Type           string           `json:"type"`
	Branch         string           `json:"branch"`
	SerialNumber   *string          `json:"serial_number,omitempty"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	Attributes     map[string]any   `json:"attributes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidType       = errors.New("invalid_type")
	ErrInvalidBranch     = errors.New("invalid_branch")
	ErrInvalidUnitPrice  = errors.New("invalid_unit_price")
	ErrInvalidSalePrice  = errors.New("invalid_sale_price")
	ErrInvalidAttributes = errors.New("invalid_attributes")
	ErrNotFound          = errors.New("not_found")
	ErrCodeExists        = errors.New("code_exists")
	ErrProductInUse      = errors.New("product_in_use")
)
