package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ratecarddomain.ErrInvalidRate),
		errors.Is(err, ratecarddomain.ErrInvalidMultiplier),
		errors.Is(err, ratecarddomain.ErrInvalidClockTime),
		errors.Is(err, ratecarddomain.ErrInvalidRecurringPattern),
		errors.Is(err, ratecalcdomain.ErrInvalidShiftTime),
		errors.Is(err, billingperioddomain.ErrInvalidPeriod),
		errors.Is(err, invoicedomain.ErrInvalidInvoiceType):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ratecarddomain.ErrRoleNotFound),
		errors.Is(err, ratecalcdomain.ErrUnknownRole),
		errors.Is(err, billingperioddomain.ErrPeriodNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, invoicedomain.ErrSettingsNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, ratecarddomain.ErrDuplicateRole),
		errors.Is(err, ratecarddomain.ErrDuplicateMultiplier),
		errors.Is(err, ratecarddomain.ErrDuplicateBankHoliday),
		errors.Is(err, ratecarddomain.ErrDuplicateShiftWindow),
		errors.Is(err, billingperioddomain.ErrOverlappingPeriod),
		errors.Is(err, invoicedomain.ErrAlreadyGenerated):
		return true
	default:
		return false
	}
}

func isUnprocessableError(err error) bool {
	switch {
	case errors.Is(err, billingperioddomain.ErrPeriodClosed),
		errors.Is(err, billingperioddomain.ErrUnbilledShifts),
		errors.Is(err, invoicedomain.ErrNoBillableShifts),
		errors.Is(err, invoicedomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}
