package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/internal/clock"
	"github.com/smallbiznis/salesledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	productType := domain.ProductType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !domain.ValidType(productType) {
		return nil, domain.ErrInvalidType
	}
	branch := strings.TrimSpace(req.Branch)
	if !domain.ValidBranch(productType, branch) {
		return nil, domain.ErrInvalidBranch
	}
	if req.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidUnitPrice
	}
	salePrice, err := normalizeSalePrice(req.SalePrice)
	if err != nil {
		return nil, err
	}
	if err := validateAttributes(productType, req.Attributes); err != nil {
		return nil, err
	}

	id := s.genID.Generate()
	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		code = fmt.Sprintf("%s-%s", slug.Make(name), strings.ToLower(id.Base36()))
	}

	now := s.clock.Now().UTC()
	p := &domain.Product{
		ID:           id.Int64(),
		Code:         code,
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Type:         productType,
		Branch:       branch,
		SerialNumber: trimOptional(req.SerialNumber),
		UnitPrice:    req.UnitPrice.Round(2),
		SalePrice:    salePrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(req.Attributes) > 0 {
		p.Attributes = datatypes.JSONMap(req.Attributes)
	}

	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCodeExists
		}
		return nil, err
	}

	s.log.Info("product created", zap.Int64("product_id", p.ID), zap.String("code", p.Code))
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(p)
	return &resp, nil
}

// GetProduct loads a product snapshot through db, which may be a transaction.
func (s *Service) GetProduct(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	if db == nil {
		db = s.db
	}
	p, err := s.repo.FindByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Type:    strings.ToLower(strings.TrimSpace(req.Type)),
		Branch:  strings.TrimSpace(req.Branch),
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
		Limit:   req.Limit,
	}
	if filter.Type != "" && !domain.ValidType(domain.ProductType(filter.Type)) {
		return nil, domain.ErrInvalidType
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		p.Type = domain.ProductType(strings.ToLower(strings.TrimSpace(*req.Type)))
		if !domain.ValidType(p.Type) {
			return nil, domain.ErrInvalidType
		}
	}
	if req.Branch != nil {
		p.Branch = strings.TrimSpace(*req.Branch)
	}
	if !domain.ValidBranch(p.Type, p.Branch) {
		return nil, domain.ErrInvalidBranch
	}
	if req.SerialNumber != nil {
		p.SerialNumber = trimOptional(req.SerialNumber)
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidUnitPrice
		}
		p.UnitPrice = req.UnitPrice.Round(2)
	}
	switch {
	case req.ClearSalePrice:
		p.SalePrice = decimal.NullDecimal{}
	case req.SalePrice != nil:
		salePrice, err := normalizeSalePrice(req.SalePrice)
		if err != nil {
			return nil, err
		}
		p.SalePrice = salePrice
	}
	if req.Attributes != nil {
		p.Attributes = datatypes.JSONMap(req.Attributes)
	}
	if req.Type != nil || req.Attributes != nil {
		if err := validateAttributes(p.Type, p.Attributes); err != nil {
			return nil, err
		}
	}

	p.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}

	resp := toResponse(p)
	return &resp, nil
}

// Delete removes a product that no order item references. Products with
// sales history are kept so historical orders stay intact.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs, err := s.repo.CountOrderItems(ctx, tx, productID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrProductInUse
		}
		affected, err := s.repo.Delete(ctx, tx, productID)
		if err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrProductInUse
			}
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("product deleted", zap.Int64("product_id", productID))
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func normalizeSalePrice(value *decimal.Decimal) (decimal.NullDecimal, error) {
	if value == nil {
		return decimal.NullDecimal{}, nil
	}
	if value.IsNegative() {
		return decimal.NullDecimal{}, domain.ErrInvalidSalePrice
	}
	return decimal.NewNullDecimal(value.Round(2)), nil
}

// validateAttributes checks crop_sex and the dimension fields: carpets carry
// a size, tableaus a length and width, never both kinds.
func validateAttributes(t domain.ProductType, attrs map[string]any) error {
	if raw, ok := attrs["crop_sex"]; ok && raw != nil {
		crop, ok := raw.(string)
		if !ok || !domain.ValidCrop(crop) {
			return domain.ErrInvalidAttributes
		}
	}

	size := hasValue(attrs["size"])
	length, width := hasValue(attrs["length"]), hasValue(attrs["width"])
	switch t {
	case domain.ProductTypeCarpet:
		if !size || length || width {
			return domain.ErrInvalidAttributes
		}
	case domain.ProductTypeTableau:
		if !length || !width || size {
			return domain.ErrInvalidAttributes
		}
	}
	return nil
}

func hasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(p.ID).String(),
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		Type:           string(p.Type),
		Branch:         p.Branch,
		SerialNumber:   p.SerialNumber,
		UnitPrice:      p.UnitPrice,
		EffectivePrice: p.EffectivePrice(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.SalePrice.Valid {
		salePrice := p.SalePrice.Decimal
		resp.SalePrice = &salePrice
	}
	if len(p.Attributes) > 0 {
		resp.Attributes = map[string]any(p.Attributes)
	}
	return resp
}
