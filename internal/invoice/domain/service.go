package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kofiy77/joyjoy-Locums/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// AggregateLine is a priced, quarter-hour-rounded shift ready for invoicing.
type AggregateLine struct {
	ShiftID            snowflake.ID    `json:"shift_id"`
	StaffID            *snowflake.ID   `json:"staff_id,omitempty"`
	StaffName          string          `json:"staff_name,omitempty"`
	ShiftDate          time.Time       `json:"shift_date"`
	Role               string          `json:"role"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	Description        string          `json:"description"`
	TotalHours         decimal.Decimal `json:"total_hours"`
	HoursBilled        decimal.Decimal `json:"hours_billed"`
	UnitRate           decimal.Decimal `json:"unit_rate"`
	AppliedMultipliers []byte          `json:"-"`
	Amount             decimal.Decimal `json:"amount"`
}

// AggregateError records a shift that could not be priced. The shift stays
// out of the invoice but the failure is reported, not swallowed.
type AggregateError struct {
	ShiftID   snowflake.ID `json:"shift_id"`
	ShiftDate time.Time    `json:"shift_date"`
	Role      string       `json:"role"`
	Reason    string       `json:"reason"`
}

// RecipientAggregate groups billable lines for one invoice recipient, either
// a practice (client invoices) or a staff member (payroll invoices).
type RecipientAggregate struct {
	RecipientID    snowflake.ID     `json:"recipient_id"`
	RecipientName  string           `json:"recipient_name"`
	RecipientEmail string           `json:"recipient_email"`
	RecipientAddr  string           `json:"recipient_addr"`
	VATRegistered  bool             `json:"vat_registered"`
	VATNumber      string           `json:"vat_number"`
	PayrollRef     string           `json:"payroll_ref"`
	PaymentTerms   int              `json:"payment_terms_days"`
	Lines          []AggregateLine  `json:"lines"`
	Errors         []AggregateError `json:"errors,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
}

type GenerateInvoicesRequest struct {
	BillingPeriodID snowflake.ID `json:"billing_period_id" binding:"required"`
	InvoiceType     InvoiceType  `json:"invoice_type" binding:"required"`
}

type GenerateInvoicesResult struct {
	Invoices []Invoice        `json:"invoices"`
	Skipped  []AggregateError `json:"skipped,omitempty"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	InvoiceType     InvoiceType   `form:"invoice_type"`
	Status          InvoiceStatus `form:"status"`
	BillingPeriodID *snowflake.ID `form:"billing_period_id"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	// Aggregate previews unbilled completed shifts in a period grouped by
	// recipient, without writing anything.
	Aggregate(ctx context.Context, periodID snowflake.ID, invoiceType InvoiceType) ([]RecipientAggregate, error)

	// Generate creates draft invoices for every recipient with billable
	// shifts in the period. It runs in a single transaction and is
	// idempotent per period and invoice type.
	Generate(ctx context.Context, req GenerateInvoicesRequest) (GenerateInvoicesResult, error)

	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Invoice, error)

	MarkSent(ctx context.Context, id snowflake.ID) (*Invoice, error)
	MarkPaid(ctx context.Context, id snowflake.ID) (*Invoice, error)

	// Cancel voids a draft or sent invoice. Shifts on a cancelled invoice
	// become billable again.
	Cancel(ctx context.Context, id snowflake.ID) (*Invoice, error)

	// MarkOverdueInvoices flips sent invoices past their due date to
	// overdue and returns how many changed.
	MarkOverdueInvoices(ctx context.Context) (int64, error)

	Settings(ctx context.Context) (*InvoiceSettings, error)
	UpdateSettings(ctx context.Context, settings InvoiceSettings) (*InvoiceSettings, error)
}

var (
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrInvalidInvoiceType = errors.New("invalid_invoice_type")
	ErrAlreadyGenerated   = errors.New("invoices_already_generated")
	ErrNoBillableShifts   = errors.New("no_billable_shifts")
	ErrInvalidTransition  = errors.New("invalid_invoice_transition")
	ErrSettingsNotFound   = errors.New("invoice_settings_not_found")
)
