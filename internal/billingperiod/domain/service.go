package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kofiy77/joyjoy-Locums/pkg/db/pagination"
)

type CreateBillingPeriodRequest struct {
	PeriodName  string    `json:"period_name"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
	Notes       string    `json:"notes"`
}

type ListBillingPeriodRequest struct {
	pagination.Pagination
	Status BillingPeriodStatus `form:"status"`
}

type ListBillingPeriodResponse struct {
	pagination.PageInfo
	BillingPeriods []BillingPeriod `json:"billing_periods"`
}

type Service interface {
	Create(context.Context, CreateBillingPeriodRequest) (*BillingPeriod, error)
	List(context.Context, ListBillingPeriodRequest) (ListBillingPeriodResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*BillingPeriod, error)

	// FindForDate returns the period containing the given date, or
	// ErrPeriodNotFound when no period covers it.
	FindForDate(ctx context.Context, date time.Time) (*BillingPeriod, error)

	// EnsureCurrentPeriod opens a period covering now when none exists,
	// aligned to the configured billing frequency.
	EnsureCurrentPeriod(ctx context.Context) (*BillingPeriod, error)

	// Close transitions an open period to closed, recording who closed it.
	// It refuses when completed shifts inside the period have not been
	// billed.
	Close(ctx context.Context, id snowflake.ID, closedBy string) (*BillingPeriod, error)
}

var (
	ErrPeriodNotFound    = errors.New("billing_period_not_found")
	ErrInvalidPeriod     = errors.New("invalid_billing_period")
	ErrOverlappingPeriod = errors.New("overlapping_billing_period")
	ErrPeriodClosed      = errors.New("billing_period_closed")
	ErrUnbilledShifts    = errors.New("unbilled_shifts_in_period")
)
