package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/salesledger/internal/order/domain"
	"github.com/smallbiznis/salesledger/pkg/db/pagination"
)

type createOrderItemRequest struct {
	ProductID json.RawMessage `json:"product_id"`
	Discount  json.RawMessage `json:"discount"`
}

type createOrderRequest struct {
	CustomerName    string                   `json:"customer_name"`
	CustomerPhone   string                   `json:"customer_phone"`
	CustomerCity    string                   `json:"customer_city"`
	CustomerState   string                   `json:"customer_state"`
	CustomerRegion  string                   `json:"customer_region"`
	CustomerAddress string                   `json:"customer_address"`
	Items           []createOrderItemRequest `json:"items"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]orderdomain.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.ItemRequest{
			ProductID: rawScalar(item.ProductID),
			Discount:  rawScalar(item.Discount),
		})
	}

	resp, err := s.orderSvc.CreateOrder(c.Request.Context(), orderdomain.CreateOrderRequest{
		Customer: orderdomain.Customer{
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			City:    req.CustomerCity,
			State:   req.CustomerState,
			Region:  req.CustomerRegion,
			Address: req.CustomerAddress,
		},
		Items: items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		City   string `form:"city"`
		Region string `form:"region"`
		From   string `form:"from"`
		To     string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.orderSvc.ListOrders(c.Request.Context(), orderdomain.ListOrdersRequest{
		Pagination: query.Pagination,
		City:       query.City,
		Region:     query.Region,
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Orders,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.orderSvc.GetOrder(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.orderSvc.DeleteOrder(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawScalar returns a JSON string's contents or a number's literal text so
// both "100" and 100 reach the ledger unchanged. null becomes empty.
func rawScalar(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}
