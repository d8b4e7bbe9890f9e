package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
)

type createProductRequest struct {
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

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateRequest{
		Code:         strings.TrimSpace(req.Code),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Type:         req.Type,
		Branch:       req.Branch,
		SerialNumber: req.SerialNumber,
		UnitPrice:    req.UnitPrice,
		SalePrice:    req.SalePrice,
		Attributes:   req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Type    string `form:"type"`
		Branch  string `form:"branch"`
		SortBy  string `form:"sort_by"`
		OrderBy string `form:"order_by"`
		Limit   string `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	limit, err := parseOptionalInt(query.Limit)
	if err != nil || limit < 0 {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Type:    query.Type,
		Branch:  query.Branch,
		SortBy:  query.SortBy,
		OrderBy: query.OrderBy,
		Limit:   limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListBranches returns the branches a product type accepts.
func (s *Server) ListBranches(c *gin.Context) {
	productType := catalogdomain.ProductType(strings.ToLower(strings.TrimSpace(c.Query("type"))))
	if !catalogdomain.ValidType(productType) {
		AbortWithError(c, catalogdomain.ErrInvalidType)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": catalogdomain.Branches(productType)})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req catalogdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.catalogSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.catalogSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
