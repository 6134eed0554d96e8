// Package domain contains the read-only shift and timesheet feed models. The
// billing engine consumes completed shifts; it never creates or mutates them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ShiftStatus string

const (
	ShiftStatusOpen      ShiftStatus = "open"
	ShiftStatusPending   ShiftStatus = "pending"
	ShiftStatusConfirmed ShiftStatus = "confirmed"
	ShiftStatusDeclined  ShiftStatus = "declined"
	ShiftStatusCompleted ShiftStatus = "completed"
)

// Shift is a worked (or workable) shift at a practice.
type Shift struct {
	ID         snowflake.ID  `gorm:"primaryKey"`
	ShiftRef   string        `gorm:"type:text;not null;uniqueIndex"`
	PracticeID snowflake.ID  `gorm:"not null;index"`
	StaffID    *snowflake.ID `gorm:"index"`
	Role       string        `gorm:"type:text;not null"`
	Date       time.Time     `gorm:"type:date;not null;index"`
	StartTime  string        `gorm:"type:text;not null"`
	EndTime    string        `gorm:"type:text;not null"`
	Status     ShiftStatus   `gorm:"type:text;not null;default:'open'"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Shift) TableName() string { return "shifts" }

type TimesheetStatus string

const (
	TimesheetStatusDraft    TimesheetStatus = "draft"
	TimesheetStatusPending  TimesheetStatus = "pending_manager_approval"
	TimesheetStatusApproved TimesheetStatus = "approved"
	TimesheetStatusRejected TimesheetStatus = "rejected"
)

// Timesheet is a weekly record of daily hours submitted by a staff member.
type Timesheet struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	StaffID    snowflake.ID    `gorm:"not null;index"`
	PracticeID snowflake.ID    `gorm:"not null;index"`
	WeekStart  time.Time       `gorm:"type:date;not null;index"`
	WeekEnd    time.Time       `gorm:"type:date;not null"`
	DailyHours datatypes.JSON  `gorm:"type:jsonb;not null"`
	TotalHours decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Status     TimesheetStatus `gorm:"type:text;not null;default:'draft'"`
	ApprovedAt *time.Time      `gorm:""`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Timesheet) TableName() string { return "timesheets" }
