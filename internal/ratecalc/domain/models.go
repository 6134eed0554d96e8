// Package domain contains the rate calculation contract and audit model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AppliedMultiplier is one entry of the ordered multiplier snapshot attached
// to a calculation.
type AppliedMultiplier struct {
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Reason     string          `json:"reason"`
}

// ShiftInput identifies the shift being priced. Region may be empty, in which
// case the configured default region is used for the bank-holiday check.
type ShiftInput struct {
	ShiftID   *snowflake.ID
	Role      string
	Date      time.Time
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Region    string
}

// Result is the complete priced outcome for one shift. Internal refers to the
// worker pay side, external to the client bill side.
type Result struct {
	DurationHours decimal.Decimal     `json:"durationHours"`
	BasePayRate   decimal.Decimal     `json:"basePayRate"`
	BaseBillRate  decimal.Decimal     `json:"baseBillRate"`
	Applied       []AppliedMultiplier `json:"appliedMultipliers"`
	FinalPayRate  decimal.Decimal     `json:"finalPayRate"`
	FinalBillRate decimal.Decimal     `json:"finalBillRate"`
	TotalPayCost  decimal.Decimal     `json:"totalPayCost"`
	TotalBillCost decimal.Decimal     `json:"totalBillCost"`
}

// RateCalculationLog is the immutable audit snapshot of one computation.
// Recomputation appends a new row; rows are never updated or deleted.
type RateCalculationLog struct {
	ID                 snowflake.ID    `gorm:"primaryKey"`
	ShiftID            *snowflake.ID   `gorm:"index"`
	Role               string          `gorm:"type:text;not null"`
	ShiftDate          time.Time       `gorm:"type:date;not null"`
	StartTime          string          `gorm:"type:text;not null"`
	EndTime            string          `gorm:"type:text;not null"`
	ShiftDurationHours decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	BaseInternalRate   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	BaseExternalRate   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	AppliedMultipliers datatypes.JSON  `gorm:"type:jsonb"`
	FinalInternalRate  decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	FinalExternalRate  decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	TotalInternalCost  decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	TotalExternalCost  decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	CalculatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RateCalculationLog) TableName() string { return "rate_calculation_logs" }
