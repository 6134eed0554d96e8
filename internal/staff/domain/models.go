// Package domain contains the staff entity whose identity is snapshotted
// into payroll invoices at generation time.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type StaffMember struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string       `gorm:"type:text;not null"`
	Role        string       `gorm:"type:text;not null"` // must match rate card roles
	Email       string       `gorm:"type:text"`
	PayrollRef  string       `gorm:"type:text;uniqueIndex"` // payroll provider identifier
	NINumber    string       `gorm:"type:text"`
	IsAvailable bool         `gorm:"not null;default:true"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StaffMember) TableName() string { return "staff" }
