package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/salesledger/internal/catalog"
	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/internal/config"
	"github.com/smallbiznis/salesledger/internal/observability"
	obsmiddleware "github.com/smallbiznis/salesledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/salesledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/salesledger/internal/observability/tracing"
	"github.com/smallbiznis/salesledger/internal/order"
	orderdomain "github.com/smallbiznis/salesledger/internal/order/domain"
	"github.com/smallbiznis/salesledger/internal/ratelimit"
	"github.com/smallbiznis/salesledger/internal/salesreport"
	salesreportdomain "github.com/smallbiznis/salesledger/internal/salesreport/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	catalog.Module,
	order.Module,
	salesreport.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type reportLimiter interface {
	Allow(ctx context.Context, clientKey string) (*ratelimit.RateLimitResult, error)
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	catalogSvc     catalogdomain.Service
	orderSvc       orderdomain.Service
	salesReportSvc salesreportdomain.Service
	reportLimiter  reportLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	CatalogSvc     catalogdomain.Service
	OrderSvc       orderdomain.Service
	SalesReportSvc salesreportdomain.Service
	ReportLimiter  *ratelimit.ReportLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		catalogSvc:     p.CatalogSvc,
		orderSvc:       p.OrderSvc,
		salesReportSvc: p.SalesReportSvc,
		obsMetrics:     p.ObsMetrics,
	}
	if p.ReportLimiter.Enabled() {
		svc.reportLimiter = p.ReportLimiter
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/branches", s.ListBranches)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.DELETE("/orders/:id", s.DeleteOrder)

	reports := api.Group("/reports", s.ReportRateLimit())
	{
		reports.GET("/revenue", s.GetRevenueTotal)
		reports.GET("/profit", s.GetProfitTotal)
		reports.GET("/sales-by-product", s.GetSalesByProduct)
		reports.GET("/top-products", s.GetTopProducts)
		reports.GET("/totals", s.GetPeriodTotals)
		reports.GET("/timeseries", s.GetTimeSeries)
		reports.GET("/regions", s.GetRegionalBreakdown)
		reports.GET("/dashboard", s.GetDashboard)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
