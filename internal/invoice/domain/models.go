// Package domain contains persistence models for self-billing invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceType distinguishes client billing from payroll self-billing.
type InvoiceType string

const (
	InvoiceTypeClient  InvoiceType = "client"
	InvoiceTypePayroll InvoiceType = "payroll"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents a generated invoice. Recipient identity is snapshotted
// at generation time so later edits to practices or staff never rewrite
// issued documents.
type Invoice struct {
	ID              snowflake.ID  `gorm:"primaryKey"`
	InvoiceNumber   string        `gorm:"type:text;not null;uniqueIndex"`
	InvoiceType     InvoiceType   `gorm:"type:text;not null;index"`
	BillingPeriodID snowflake.ID  `gorm:"not null;index"`
	RecipientID     snowflake.ID  `gorm:"not null;index"`
	RecipientName   string        `gorm:"type:text;not null"`
	RecipientEmail  string        `gorm:"type:text"`
	RecipientAddr   string        `gorm:"type:text"`
	VATNumber       string        `gorm:"type:text"`
	PayrollRef      string        `gorm:"type:text"`
	Status          InvoiceStatus `gorm:"type:text;not null;default:'draft'"`

	SubtotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	VATRate        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	VATAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency       string          `gorm:"type:text;not null;default:'GBP'"`

	PeriodStart time.Time  `gorm:"type:date;not null"`
	PeriodEnd   time.Time  `gorm:"type:date;not null"`
	IssuedAt    time.Time  `gorm:"not null"`
	DueAt       time.Time  `gorm:"not null"`
	SentAt      *time.Time `gorm:""`
	PaidAt      *time.Time `gorm:""`
	CancelledAt *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`

	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLineItem represents one billed shift on an invoice. TotalHours is
// the worked duration; HoursBilled is what remains after quarter-hour
// rounding and is what the amount is computed from.
type InvoiceLineItem struct {
	ID                 snowflake.ID    `gorm:"primaryKey"`
	InvoiceID          snowflake.ID    `gorm:"not null;index"`
	ShiftID            snowflake.ID    `gorm:"not null;index"`
	StaffID            *snowflake.ID   `gorm:"index"`
	StaffName          string          `gorm:"type:text"`
	ShiftDate          time.Time       `gorm:"type:date;not null"`
	Role               string          `gorm:"type:text;not null"`
	StartTime          string          `gorm:"type:text"`
	EndTime            string          `gorm:"type:text"`
	Description        string          `gorm:"type:text"`
	TotalHours         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	HoursBilled        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	UnitRate           decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	AppliedMultipliers datatypes.JSON  `gorm:"type:jsonb"`
	Amount             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceLineItem) TableName() string { return "invoice_line_items" }

// InvoiceSettings is a single-row table holding numbering counters and
// billing defaults for the issuing agency. Counters only ever move forward.
// VATRegistered is the agency's own registration: client invoices carry VAT
// only while it is set.
type InvoiceSettings struct {
	ID                        int64           `gorm:"primaryKey"`
	ClientInvoicePrefix       string          `gorm:"type:text;not null;default:'JJC-'"`
	PayrollInvoicePrefix      string          `gorm:"type:text;not null;default:'PYS-'"`
	NextClientInvoiceNumber   int64           `gorm:"not null;default:1000"`
	NextPayrollInvoiceNumber  int64           `gorm:"not null;default:2000"`
	VATRate                   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:20"`
	VATRegistered             bool            `gorm:"not null;default:true"`
	VATNumber                 string          `gorm:"type:text"`
	CompanyRegistrationNumber string          `gorm:"type:text"`
	PaymentTermsDays          int             `gorm:"not null;default:30"`
	UpdatedAt                 time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceSettings) TableName() string { return "invoice_settings" }

// SettingsRowID is the fixed primary key of the settings singleton.
const SettingsRowID int64 = 1
