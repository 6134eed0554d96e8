// Package server wires the HTTP surface of the billing engine.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kofiy77/joyjoy-Locums/internal/billingperiod"
	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/config"
	"github.com/kofiy77/joyjoy-Locums/internal/invoice"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/invoice/render"
	obsmetrics "github.com/kofiy77/joyjoy-Locums/internal/observability/metrics"
	"github.com/kofiy77/joyjoy-Locums/internal/ratecalc"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/ratecard"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/scheduler"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratecard.Module,
	ratecalc.Module,
	billingperiod.Module,
	invoice.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(obsmetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", obsmetrics.Handler())

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	catalogSvc ratecarddomain.Service
	calcSvc    ratecalcdomain.Service
	periodSvc  billingperioddomain.Service
	invoiceSvc invoicedomain.Service
	renderer   render.Renderer
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	CatalogSvc ratecarddomain.Service
	CalcSvc    ratecalcdomain.Service
	PeriodSvc  billingperioddomain.Service
	InvoiceSvc invoicedomain.Service
	Renderer   render.Renderer
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		catalogSvc: p.CatalogSvc,
		calcSvc:    p.CalcSvc,
		periodSvc:  p.PeriodSvc,
		invoiceSvc: p.InvoiceSvc,
		renderer:   p.Renderer,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Rate catalog --------
	api.GET("/rates", s.ListRoleBaseRates)
	api.POST("/rates", s.CreateRoleBaseRate)
	api.POST("/rates/:role/deactivate", s.DeactivateRoleBaseRate)
	api.GET("/multipliers", s.ListMultipliers)
	api.POST("/multipliers", s.CreateMultiplier)
	api.GET("/bank-holidays", s.ListBankHolidays)
	api.POST("/bank-holidays", s.CreateBankHoliday)
	api.GET("/shift-windows", s.ListShiftTimeWindows)
	api.POST("/shift-windows", s.CreateShiftTimeWindow)

	// -------- Rate calculator --------
	api.POST("/calculate-rate", s.CalculateRate)

	// -------- Billing periods --------
	api.GET("/billing-periods", s.ListBillingPeriods)
	api.POST("/billing-periods", s.CreateBillingPeriod)
	api.GET("/billing-periods/:id", s.GetBillingPeriodByID)
	api.POST("/billing-periods/:id/close", s.CloseBillingPeriod)
	api.GET("/billing-periods/:id/aggregate", s.AggregatePeriod)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices/generate", s.GenerateInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/render", s.RenderInvoice)
	api.POST("/invoices/:id/send", s.MarkInvoiceSent)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)
	api.GET("/invoice-settings", s.GetInvoiceSettings)
	api.PUT("/invoice-settings", s.UpdateInvoiceSettings)
}
