package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
)

type calculateRateRequest struct {
	Role      string `json:"role" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Region    string `json:"region"`
	Persist   bool   `json:"persist"`
}

// CalculateRate prices a hypothetical shift. With persist set the calculation
// is also written to the audit log.
func (s *Server) CalculateRate(c *gin.Context) {
	var req calculateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	input := ratecalcdomain.ShiftInput{
		Role:      req.Role,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Region:    req.Region,
	}

	var result ratecalcdomain.Result
	if req.Persist {
		result, err = s.calcSvc.ComputeAndLog(c.Request.Context(), input)
	} else {
		result, err = s.calcSvc.Compute(c.Request.Context(), input)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
