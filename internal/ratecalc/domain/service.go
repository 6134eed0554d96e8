package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Compute prices a shift. It is a pure function over the rate catalog:
	// identical input against identical catalog state yields an identical
	// result, including the order of the applied-multiplier list.
	Compute(ctx context.Context, input ShiftInput) (Result, error)
	// ComputeAndLog prices a shift and appends a RateCalculationLog row.
	ComputeAndLog(ctx context.Context, input ShiftInput) (Result, error)
}

var (
	ErrUnknownRole      = errors.New("unknown_role")
	ErrInvalidShiftTime = errors.New("invalid_shift_time")
	// ErrNoActiveMultipliers is reported as a warning only; calculation
	// proceeds on base rates.
	ErrNoActiveMultipliers = errors.New("no_active_multipliers_configured")
)
