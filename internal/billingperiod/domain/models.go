package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BillingPeriodStatus represents invoicing progress for a period.
type BillingPeriodStatus string

const (
	BillingPeriodStatusOpen   BillingPeriodStatus = "open"
	BillingPeriodStatusClosed BillingPeriodStatus = "closed"
)

// BillingFrequency controls how long an automatically opened period runs.
type BillingFrequency string

const (
	FrequencyWeekly      BillingFrequency = "weekly"
	FrequencyFortnightly BillingFrequency = "fortnightly"
	FrequencyMonthly     BillingFrequency = "monthly"
)

// BillingPeriod is a half-open window [PeriodStart, PeriodEnd) that groups
// completed shifts for invoicing. Totals are frozen once invoices exist.
type BillingPeriod struct {
	ID                       snowflake.ID        `gorm:"primaryKey"`
	PeriodName               string              `gorm:"type:text;not null"`
	PeriodStart              time.Time           `gorm:"type:date;not null;index"`
	PeriodEnd                time.Time           `gorm:"type:date;not null"`
	Status                   BillingPeriodStatus `gorm:"type:text;not null;default:'open'"`
	ClientInvoicesGenerated  bool                `gorm:"not null;default:false"`
	PayrollInvoicesGenerated bool                `gorm:"not null;default:false"`
	TotalShifts              int                 `gorm:"not null;default:0"`
	TotalHours               decimal.Decimal     `gorm:"type:decimal(8,2);not null;default:0"`
	TotalClientAmount        decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPayrollAmount       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Notes                    string              `gorm:"type:text"`
	ClosedAt                 *time.Time          `gorm:""`
	ClosedBy                 string              `gorm:"type:text"`
	CreatedAt                time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingPeriod) TableName() string { return "billing_periods" }

// Contains reports whether the given date falls inside the period.
func (p BillingPeriod) Contains(date time.Time) bool {
	d := date.UTC().Truncate(24 * time.Hour)
	return !d.Before(p.PeriodStart) && d.Before(p.PeriodEnd)
}
