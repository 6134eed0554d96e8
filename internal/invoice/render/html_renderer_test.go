package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
)

func sampleInvoice(invoiceType invoicedomain.InvoiceType) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		InvoiceNumber:  "JJC-1000",
		InvoiceType:    invoiceType,
		RecipientName:  "Oakfield Surgery",
		RecipientEmail: "accounts@example.org",
		Status:         invoicedomain.InvoiceStatusDraft,
		SubtotalAmount: decimal.RequireFromString("448"),
		VATRate:        decimal.RequireFromString("20"),
		VATAmount:      decimal.RequireFromString("89.60"),
		TotalAmount:    decimal.RequireFromString("537.60"),
		Currency:       "GBP",
		IssuedAt:       time.Date(2026, time.January, 13, 0, 0, 0, 0, time.UTC),
		DueAt:          time.Date(2026, time.February, 12, 0, 0, 0, 0, time.UTC),
	}
}

func sampleLines() []invoicedomain.InvoiceLineItem {
	return []invoicedomain.InvoiceLineItem{
		{
			Description: "Agency Nurse shift SH-1 on 2026-01-05 (09:00-17:00)",
			HoursBilled: decimal.RequireFromString("8"),
			UnitRate:    decimal.RequireFromString("28"),
			Amount:      decimal.RequireFromString("224"),
		},
	}
}

func TestRenderClientInvoice(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.RenderHTML(RenderInput{
		Company: CompanyDetails{Name: "JoyJoy Locums", Address: "Norwich, UK"},
		Invoice: sampleInvoice(invoicedomain.InvoiceTypeClient),
		Lines:   sampleLines(),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "JJC-1000")
	assert.Contains(t, html, "Bill to")
	assert.Contains(t, html, "Oakfield Surgery")
	assert.Contains(t, html, "£448.00")
	assert.Contains(t, html, "VAT (20%)")
	assert.Contains(t, html, "£537.60")
	assert.Contains(t, html, "13 January 2026")
	assert.NotContains(t, html, "Self-billing")
}

func TestRenderPayrollInvoiceIsSelfBilling(t *testing.T) {
	renderer := NewRenderer()

	invoice := sampleInvoice(invoicedomain.InvoiceTypePayroll)
	invoice.InvoiceNumber = "PYS-2000"
	invoice.RecipientName = "Priya Shah"
	invoice.PayrollRef = "PR-0042"
	invoice.VATRate = decimal.Zero
	invoice.VATAmount = decimal.Zero
	invoice.SubtotalAmount = decimal.RequireFromString("144")
	invoice.TotalAmount = decimal.RequireFromString("144")

	html, err := renderer.RenderHTML(RenderInput{
		Invoice: invoice,
		Lines:   sampleLines(),
	})
	require.NoError(t, err)

	assert.True(t, strings.Contains(html, "Self-Billing Invoice"))
	assert.Contains(t, html, "Pay to")
	assert.Contains(t, html, "Payroll ref: PR-0042")
	assert.Contains(t, html, "Self-billing invoice raised by JoyJoy Locums on behalf of Priya Shah")
	assert.NotContains(t, html, "VAT (")
}
