package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// BaseRates is the pair of base rates resolved for a role. The catalog hands
// out the minimum card rates; the max columns bound what administrators may
// configure, not what the calculator uses.
type BaseRates struct {
	PayRate  decimal.Decimal `json:"payRate"`
	BillRate decimal.Decimal `json:"billRate"`
}

type Service interface {
	// BaseRate resolves base pay/bill rates for an active role.
	BaseRate(ctx context.Context, role string) (BaseRates, error)
	// ActiveMultipliers returns active multipliers ordered by priority desc,
	// ties broken by declaration order. The ordering is stable and total.
	ActiveMultipliers(ctx context.Context) ([]RateMultiplier, error)
	// IsBankHoliday reports whether date is a bank holiday in region,
	// resolving both explicit dates and recurring patterns. The returned
	// string is the holiday name for audit reasons.
	IsBankHoliday(ctx context.Context, date time.Time, region string) (bool, string, error)
	// ClassifyShiftWindow returns the shift type whose configured window
	// overlaps the shift the most, or DefaultShiftType when nothing matches.
	ClassifyShiftWindow(ctx context.Context, startTime, endTime string) (string, error)

	CreateRoleBaseRate(ctx context.Context, rate *RoleBaseRate) error
	ListRoleBaseRates(ctx context.Context) ([]RoleBaseRate, error)
	DeactivateRoleBaseRate(ctx context.Context, role string) error

	CreateMultiplier(ctx context.Context, multiplier *RateMultiplier) error
	ListMultipliers(ctx context.Context) ([]RateMultiplier, error)

	CreateBankHoliday(ctx context.Context, holiday *BankHoliday) error
	ListBankHolidays(ctx context.Context) ([]BankHoliday, error)

	CreateShiftTimeWindow(ctx context.Context, window *ShiftTimeWindow) error
	ListShiftTimeWindows(ctx context.Context) ([]ShiftTimeWindow, error)
}

var (
	ErrRoleNotFound            = errors.New("role_not_found")
	ErrDuplicateRole           = errors.New("duplicate_role")
	ErrInvalidRate             = errors.New("invalid_rate")
	ErrInvalidMultiplier       = errors.New("invalid_multiplier")
	ErrDuplicateMultiplier     = errors.New("duplicate_multiplier")
	ErrDuplicateBankHoliday    = errors.New("duplicate_bank_holiday")
	ErrDuplicateShiftWindow    = errors.New("duplicate_shift_window")
	ErrInvalidClockTime        = errors.New("invalid_clock_time")
	ErrInvalidRecurringPattern = errors.New("invalid_recurring_pattern")
)
