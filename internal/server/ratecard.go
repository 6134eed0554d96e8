package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
	"github.com/shopspring/decimal"
)

type createRoleBaseRateRequest struct {
	Role              string           `json:"role" binding:"required"`
	WorkerPayRateMin  decimal.Decimal  `json:"worker_pay_rate_min" binding:"required"`
	WorkerPayRateMax  decimal.Decimal  `json:"worker_pay_rate_max" binding:"required"`
	ClientBillRateMin decimal.Decimal  `json:"client_bill_rate_min" binding:"required"`
	ClientBillRateMax decimal.Decimal  `json:"client_bill_rate_max" binding:"required"`
	AgencyMarkupMin   *decimal.Decimal `json:"agency_markup_min"`
	AgencyMarkupMax   *decimal.Decimal `json:"agency_markup_max"`
	Notes             *string          `json:"notes"`
}

func (s *Server) CreateRoleBaseRate(c *gin.Context) {
	var req createRoleBaseRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rate := ratecarddomain.RoleBaseRate{
		Role:              req.Role,
		WorkerPayRateMin:  req.WorkerPayRateMin,
		WorkerPayRateMax:  req.WorkerPayRateMax,
		ClientBillRateMin: req.ClientBillRateMin,
		ClientBillRateMax: req.ClientBillRateMax,
		AgencyMarkupMin:   req.AgencyMarkupMin,
		AgencyMarkupMax:   req.AgencyMarkupMax,
		Notes:             req.Notes,
		IsActive:          true,
	}
	if err := s.catalogSvc.CreateRoleBaseRate(c.Request.Context(), &rate); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rate)
}

func (s *Server) ListRoleBaseRates(c *gin.Context) {
	rates, err := s.catalogSvc.ListRoleBaseRates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

func (s *Server) DeactivateRoleBaseRate(c *gin.Context) {
	if err := s.catalogSvc.DeactivateRoleBaseRate(c.Request.Context(), c.Param("role")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createMultiplierRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Multiplier  decimal.Decimal `json:"multiplier" binding:"required"`
	Priority    int             `json:"priority"`
}

func (s *Server) CreateMultiplier(c *gin.Context) {
	var req createMultiplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	multiplier := ratecarddomain.RateMultiplier{
		Name:        req.Name,
		Description: req.Description,
		Multiplier:  req.Multiplier,
		Priority:    req.Priority,
		IsActive:    true,
	}
	if err := s.catalogSvc.CreateMultiplier(c.Request.Context(), &multiplier); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, multiplier)
}

func (s *Server) ListMultipliers(c *gin.Context) {
	multipliers, err := s.catalogSvc.ListMultipliers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"multipliers": multipliers})
}

type createBankHolidayRequest struct {
	Name             string  `json:"name" binding:"required"`
	Date             string  `json:"date" binding:"required"`
	Region           string  `json:"region"`
	IsRecurring      bool    `json:"is_recurring"`
	RecurringPattern *string `json:"recurring_pattern"`
}

func (s *Server) CreateBankHoliday(c *gin.Context) {
	var req createBankHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	holiday := ratecarddomain.BankHoliday{
		Name:             req.Name,
		Date:             date,
		Region:           req.Region,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: req.RecurringPattern,
	}
	if err := s.catalogSvc.CreateBankHoliday(c.Request.Context(), &holiday); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, holiday)
}

func (s *Server) ListBankHolidays(c *gin.Context) {
	holidays, err := s.catalogSvc.ListBankHolidays(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_holidays": holidays})
}

type createShiftTimeWindowRequest struct {
	ShiftType   string  `json:"shift_type" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	Description *string `json:"description"`
}

func (s *Server) CreateShiftTimeWindow(c *gin.Context) {
	var req createShiftTimeWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	window := ratecarddomain.ShiftTimeWindow{
		ShiftType:   req.ShiftType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.catalogSvc.CreateShiftTimeWindow(c.Request.Context(), &window); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, window)
}

func (s *Server) ListShiftTimeWindows(c *gin.Context) {
	windows, err := s.catalogSvc.ListShiftTimeWindows(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift_windows": windows})
}
