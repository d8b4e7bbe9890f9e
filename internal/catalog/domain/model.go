package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductType string

const (
	ProductTypeCarpet  ProductType = "carpet"
	ProductTypeTableau ProductType = "tableau"
)

// Product is the catalog record the ledger prices order items from.
// UnitPrice is the cost basis; SalePrice, when set, is what customers pay.
type Product struct {
	ID           int64               `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Code         string              `json:"code" gorm:"type:varchar(191);not null;uniqueIndex:ux_products_code"`
	Name         string              `json:"name" gorm:"type:text;not null"`
	Description  string              `json:"description" gorm:"type:text;not null;default:''"`
	Type         ProductType         `json:"type" gorm:"type:varchar(20);not null"`
	Branch       string              `json:"branch" gorm:"type:varchar(50);not null"`
	SerialNumber *string             `json:"serial_number,omitempty" gorm:"type:text"`
	UnitPrice    decimal.Decimal     `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	SalePrice    decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(12,2)"`
	Attributes   datatypes.JSONMap   `json:"attributes,omitempty"`
	CreatedAt    time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time           `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// EffectivePrice is the price an order item is charged before discount.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.UnitPrice
}

var branchesByType = map[ProductType][]string{
	ProductTypeCarpet: {
		"abrisham_qom", "tabriz", "naein", "hood_birjand", "qashqai", "arak",
		"qom", "torkaman", "esfahan", "saregh", "ashayeri", "bakhtiar",
		"ardakan", "kashan", "kashm", "other_carpet",
	},
	ProductTypeTableau: {
		"gol", "fransi", "mazhabi", "animal", "other_tableau", "abrisham_qom",
		"chehre", "tarikhi", "manzare",
	},
}

var cropChoices = map[string]struct{}{
	"chele nakh abrisham": {},
	"chele abrisham":      {},
}

func ValidType(t ProductType) bool {
	_, ok := branchesByType[t]
	return ok
}

func ValidBranch(t ProductType, branch string) bool {
	for _, b := range branchesByType[t] {
		if b == branch {
			return true
		}
	}
	return false
}

func Branches(t ProductType) []string {
	out := make([]string, len(branchesByType[t]))
	copy(out, branchesByType[t])
	return out
}

func ValidCrop(crop string) bool {
	_, ok := cropChoices[crop]
	return ok
}
