package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/invoice/render"
	"github.com/shopspring/decimal"
)

type generateInvoicesRequest struct {
	BillingPeriodID string `json:"billing_period_id" binding:"required"`
	InvoiceType     string `json:"invoice_type" binding:"required"`
}

func (s *Server) GenerateInvoices(c *gin.Context) {
	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	periodID, err := parseID(req.BillingPeriodID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateInvoicesRequest{
		BillingPeriodID: periodID,
		InvoiceType:     invoicedomain.InvoiceType(req.InvoiceType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) ListInvoices(c *gin.Context) {
	var req invoicedomain.ListInvoiceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) RenderInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.renderer.RenderHTML(render.RenderInput{
		Company: render.CompanyDetails{Name: s.cfg.AppName},
		Invoice: *invoice,
		Lines:   invoice.LineItems,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	s.transitionInvoice(c, s.invoiceSvc.MarkSent)
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	s.transitionInvoice(c, s.invoiceSvc.MarkPaid)
}

func (s *Server) CancelInvoice(c *gin.Context) {
	s.transitionInvoice(c, s.invoiceSvc.Cancel)
}

func (s *Server) transitionInvoice(c *gin.Context, fn func(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error)) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := fn(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) GetInvoiceSettings(c *gin.Context) {
	settings, err := s.invoiceSvc.Settings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateInvoiceSettingsRequest struct {
	ClientInvoicePrefix       string          `json:"client_invoice_prefix" binding:"required"`
	PayrollInvoicePrefix      string          `json:"payroll_invoice_prefix" binding:"required"`
	NextClientInvoiceNumber   int64           `json:"next_client_invoice_number" binding:"required"`
	NextPayrollInvoiceNumber  int64           `json:"next_payroll_invoice_number" binding:"required"`
	VATRate                   decimal.Decimal `json:"vat_rate" binding:"required"`
	VATRegistered             bool            `json:"vat_registered"`
	VATNumber                 string          `json:"vat_number"`
	CompanyRegistrationNumber string          `json:"company_registration_number"`
	PaymentTermsDays          int             `json:"payment_terms_days" binding:"required"`
}

func (s *Server) UpdateInvoiceSettings(c *gin.Context) {
	var req updateInvoiceSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	settings, err := s.invoiceSvc.UpdateSettings(c.Request.Context(), invoicedomain.InvoiceSettings{
		ClientInvoicePrefix:       req.ClientInvoicePrefix,
		PayrollInvoicePrefix:      req.PayrollInvoicePrefix,
		NextClientInvoiceNumber:   req.NextClientInvoiceNumber,
		NextPayrollInvoiceNumber:  req.NextPayrollInvoiceNumber,
		VATRate:                   req.VATRate,
		VATRegistered:             req.VATRegistered,
		VATNumber:                 req.VATNumber,
		CompanyRegistrationNumber: req.CompanyRegistrationNumber,
		PaymentTermsDays:          req.PaymentTermsDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
