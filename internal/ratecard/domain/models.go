// Package domain contains persistence models for the rate catalog.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Multiplier names the engine evaluates. Rows carrying other names are kept
// for forward compatibility but never match a shift.
const (
	MultiplierNightShift  = "night_shift"
	MultiplierWeekend     = "weekend"
	MultiplierBankHoliday = "bank_holiday"
	MultiplierOvertime    = "overtime"
)

// Shift window classifications.
const (
	ShiftTypeDay     = "day"
	ShiftTypeEvening = "evening"
	ShiftTypeNight   = "night"

	// DefaultShiftType is the documented fallback when no configured window
	// overlaps the shift's clock times.
	DefaultShiftType = ShiftTypeDay
)

// RoleBaseRate holds the base pay and bill rates for a role. Rows are never
// deleted, only deactivated, so historical calculation logs stay resolvable.
type RoleBaseRate struct {
	ID                snowflake.ID     `gorm:"primaryKey"`
	Role              string           `gorm:"type:text;not null;uniqueIndex"`
	WorkerPayRateMin  decimal.Decimal  `gorm:"type:decimal(6,2);not null"`
	WorkerPayRateMax  decimal.Decimal  `gorm:"type:decimal(6,2);not null"`
	ClientBillRateMin decimal.Decimal  `gorm:"type:decimal(6,2);not null"`
	ClientBillRateMax decimal.Decimal  `gorm:"type:decimal(6,2);not null"`
	AgencyMarkupMin   *decimal.Decimal `gorm:"type:decimal(5,2)"`
	AgencyMarkupMax   *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Notes             *string          `gorm:"type:text"`
	IsActive          bool             `gorm:"not null;default:true"`
	CreatedAt         time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RoleBaseRate) TableName() string { return "role_base_rates" }

// RateMultiplier is one row of the ordered rule table. Higher priority rows
// are evaluated first; equal priorities fall back to declaration order (ID).
type RateMultiplier struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	Name        string          `gorm:"type:text;not null;uniqueIndex"`
	Description string          `gorm:"type:text;not null"`
	Multiplier  decimal.Decimal `gorm:"type:decimal(5,3);not null"`
	Priority    int             `gorm:"not null;default:1"`
	IsActive    bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RateMultiplier) TableName() string { return "rate_multipliers" }

// BankHoliday is a calendar entry. Recurring rows resolve RecurringPattern
// against the queried year instead of matching Date exactly.
type BankHoliday struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	Name             string       `gorm:"type:text;not null"`
	Date             time.Time    `gorm:"type:date;not null;uniqueIndex"`
	Region           string       `gorm:"type:text;not null;default:'england-and-wales'"`
	IsRecurring      bool         `gorm:"not null;default:false"`
	RecurringPattern *string      `gorm:"type:text"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BankHoliday) TableName() string { return "bank_holidays" }

// ShiftTimeWindow classifies a shift's time-of-day category.
type ShiftTimeWindow struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	ShiftType   string       `gorm:"type:text;not null;uniqueIndex"`
	StartTime   string       `gorm:"type:text;not null"` // "HH:MM"
	EndTime     string       `gorm:"type:text;not null"` // "HH:MM"
	Description *string      `gorm:"type:text"`
	IsActive    bool         `gorm:"not null;default:true"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ShiftTimeWindow) TableName() string { return "shift_time_windows" }

// ParseClock parses an "HH:MM" clock time into minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	return hour*60 + minute, nil
}

// ResolveRecurringPattern resolves a recurrence pattern to a concrete date in
// the given year. Two grammars are supported:
//
//	"<nth>-<weekday>-<month>"  e.g. "first-monday-may", "last-monday-august"
//	"<month>-<day>"            e.g. "december-25"
func ResolveRecurringPattern(pattern string, year int) (time.Time, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(pattern)), "-")
	switch len(parts) {
	case 2:
		month, ok := monthsByName[parts[0]]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil || day < 1 || day > 31 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
		}
		resolved := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if resolved.Month() != month {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
		}
		return resolved, nil
	case 3:
		weekday, ok := weekdaysByName[parts[1]]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
		}
		month, ok := monthsByName[parts[2]]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
		}
		if parts[0] == "last" {
			return lastWeekdayOfMonth(year, month, weekday), nil
		}
		nth, ok := ordinalsByName[parts[0]]
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
		}
		return nthWeekdayOfMonth(year, month, weekday, nth), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurringPattern, pattern)
	}
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var weekdaysByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var ordinalsByName = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4,
}

func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, nth int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(nth-1)*7)
}

func lastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}
