package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	salesreportdomain "github.com/smallbiznis/salesledger/internal/salesreport/domain"
)

func (s *Server) GetRevenueTotal(c *gin.Context) {
	total, err := s.salesReportSvc.RevenueTotal(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total_revenue": total}})
}

func (s *Server) GetProfitTotal(c *gin.Context) {
	total, err := s.salesReportSvc.ProfitTotal(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total_profit": total}})
}

func (s *Server) GetSalesByProduct(c *gin.Context) {
	resp, err := s.salesReportSvc.SalesByProduct(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTopProducts(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, salesreportdomain.ErrInvalidLimit)
		return
	}

	resp, err := s.salesReportSvc.TopProducts(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPeriodTotals(c *gin.Context) {
	var req salesreportdomain.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.salesReportSvc.PeriodTotals(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTimeSeries(c *gin.Context) {
	var req salesreportdomain.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.salesReportSvc.TimeSeries(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRegionalBreakdown(c *gin.Context) {
	resp, err := s.salesReportSvc.RegionalBreakdown(c.Request.Context(), c.Query("city"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDashboard(c *gin.Context) {
	resp, err := s.salesReportSvc.Dashboard(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
