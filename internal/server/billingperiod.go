package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
)

type createBillingPeriodRequest struct {
	PeriodName  string `json:"period_name"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	Notes       string `json:"notes"`
}

func (s *Server) CreateBillingPeriod(c *gin.Context) {
	var req createBillingPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	start, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	period, err := s.periodSvc.Create(c.Request.Context(), billingperioddomain.CreateBillingPeriodRequest{
		PeriodName:  req.PeriodName,
		PeriodStart: start,
		PeriodEnd:   end,
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, period)
}

func (s *Server) ListBillingPeriods(c *gin.Context) {
	var req billingperioddomain.ListBillingPeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.periodSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetBillingPeriodByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	period, err := s.periodSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

type closeBillingPeriodRequest struct {
	ClosedBy string `json:"closed_by"`
}

func (s *Server) CloseBillingPeriod(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req closeBillingPeriodRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	period, err := s.periodSvc.Close(c.Request.Context(), id, req.ClosedBy)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

// AggregatePeriod previews invoice groupings for a period without writing.
func (s *Server) AggregatePeriod(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	invoiceType := invoicedomain.InvoiceType(c.DefaultQuery("invoice_type", string(invoicedomain.InvoiceTypeClient)))

	aggregates, err := s.invoiceSvc.Aggregate(c.Request.Context(), id, invoiceType)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aggregates": aggregates})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
