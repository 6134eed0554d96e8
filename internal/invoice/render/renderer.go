// Package render produces printable HTML documents for invoices.
package render

import (
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
)

// CompanyDetails is the issuing agency identity printed on every document.
type CompanyDetails struct {
	Name      string
	Address   string
	VATNumber string
	Email     string
}

type RenderInput struct {
	Company CompanyDetails
	Invoice invoicedomain.Invoice
	Lines   []invoicedomain.InvoiceLineItem
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}
