package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{documentTitle .Invoice.InvoiceType}} {{.Invoice.InvoiceNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
    }
    .invoice-card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 60px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
      border-radius: 4px;
    }
    .header { display: flex; justify-content: space-between; margin-bottom: 40px; }
    .header-left h1 { margin: 0; font-size: 24px; font-weight: 700; }
    .header-right { text-align: right; font-weight: 600; color: #8792a2; font-size: 16px; }
    .meta-grid { display: flex; justify-content: space-between; margin-bottom: 40px; }
    .col { flex: 1; }
    .label {
      font-size: 11px;
      text-transform: uppercase;
      color: #8792a2;
      margin-bottom: 6px;
      font-weight: 600;
      letter-spacing: 0.3px;
    }
    .value { font-size: 14px; line-height: 1.5; color: #1a1f36; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
    th {
      text-align: left;
      text-transform: uppercase;
      font-size: 11px;
      color: #8792a2;
      border-bottom: 1px solid #e3e8ee;
      padding: 10px 0;
      font-weight: 600;
    }
    td {
      padding: 16px 0;
      border-bottom: 1px solid #e3e8ee;
      font-size: 14px;
      vertical-align: top;
    }
    .td-right { text-align: right; }
    .totals { display: flex; flex-direction: column; align-items: flex-end; }
    .total-row {
      display: flex;
      justify-content: space-between;
      width: 280px;
      padding: 6px 0;
      font-size: 14px;
    }
    .total-label { color: #697386; }
    .total-value { font-weight: 500; text-align: right; }
    .total-final {
      border-top: 1px solid #e3e8ee;
      margin-top: 10px;
      padding-top: 10px;
      font-weight: 700;
      font-size: 16px;
    }
    .footer {
      margin-top: 60px;
      font-size: 12px;
      color: #8792a2;
      border-top: 1px solid #e3e8ee;
      padding-top: 20px;
    }
  </style>
</head>
<body>
  <div class="invoice-card">
    <div class="header">
      <div class="header-left">
        <h1>{{documentTitle .Invoice.InvoiceType}}</h1>
        <div class="label" style="margin-top: 12px;">Invoice number</div>
        <div class="value">{{.Invoice.InvoiceNumber}}</div>
      </div>
      <div class="header-right">
        {{.Company.Name}}<br>
        <span class="value" style="font-weight: 400;">{{.Company.Address}}</span>
        {{if .Company.VATNumber}}<br><span class="value" style="font-weight: 400;">VAT {{.Company.VATNumber}}</span>{{end}}
      </div>
    </div>

    <div class="meta-grid">
      <div class="col">
        <div class="label">{{if isPayroll .Invoice.InvoiceType}}Pay to{{else}}Bill to{{end}}</div>
        <div class="value">
          <strong>{{.Invoice.RecipientName}}</strong><br>
          {{if .Invoice.RecipientAddr}}{{.Invoice.RecipientAddr}}<br>{{end}}
          {{.Invoice.RecipientEmail}}
          {{if .Invoice.PayrollRef}}<br>Payroll ref: {{.Invoice.PayrollRef}}{{end}}
          {{if .Invoice.VATNumber}}{{if not (isPayroll .Invoice.InvoiceType)}}<br>VAT {{.Invoice.VATNumber}}{{end}}{{end}}
        </div>
      </div>
      <div class="col" style="flex: 0 0 200px;">
        <div class="label">Date issued</div>
        <div class="value">{{formatDate .Invoice.IssuedAt}}</div>
        <div class="label" style="margin-top: 16px;">Date due</div>
        <div class="value">{{formatDate .Invoice.DueAt}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width: 50%;">Shift</th>
          <th class="td-right">Hours</th>
          <th class="td-right">Rate</th>
          <th class="td-right">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Lines}}
        <tr>
          <td>{{.Description}}</td>
          <td class="td-right">{{formatHours .HoursBilled}}</td>
          <td class="td-right">{{formatMoney .UnitRate $.Invoice.Currency}}</td>
          <td class="td-right" style="font-weight: 500;">{{formatMoney .Amount $.Invoice.Currency}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row">
        <span class="total-label">Subtotal</span>
        <span class="total-value">{{formatMoney .Invoice.SubtotalAmount .Invoice.Currency}}</span>
      </div>
      {{if .Invoice.VATAmount.IsPositive}}
      <div class="total-row">
        <span class="total-label">VAT ({{formatHours .Invoice.VATRate}}%)</span>
        <span class="total-value">{{formatMoney .Invoice.VATAmount .Invoice.Currency}}</span>
      </div>
      {{end}}
      <div class="total-row total-final">
        <span class="total-label" style="color: #1a1f36;">Total due</span>
        <span class="total-value">{{formatMoney .Invoice.TotalAmount .Invoice.Currency}}</span>
      </div>
    </div>

    {{if isPayroll .Invoice.InvoiceType}}
    <div class="footer">
      Self-billing invoice raised by {{.Company.Name}} on behalf of {{.Invoice.RecipientName}}
      under a self-billing agreement. Do not raise a separate invoice for these shifts.
    </div>
    {{else}}
    <div class="footer">
      Payment is due within the agreed terms. Please quote {{.Invoice.InvoiceNumber}} on all remittances.
    </div>
    {{end}}
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney":   formatMoney,
		"formatDate":    formatDate,
		"formatHours":   formatHours,
		"documentTitle": documentTitle,
		"isPayroll":     isPayroll,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	if input.Company.Name == "" {
		input.Company.Name = "JoyJoy Locums"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(amount decimal.Decimal, currency string) string {
	symbol := "£"
	if strings.ToUpper(strings.TrimSpace(currency)) != "GBP" {
		symbol = strings.ToUpper(strings.TrimSpace(currency)) + " "
	}
	return fmt.Sprintf("%s%s", symbol, amount.StringFixed(2))
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2 January 2006")
}

func formatHours(value decimal.Decimal) string {
	s := value.StringFixed(2)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func documentTitle(invoiceType invoicedomain.InvoiceType) string {
	if isPayroll(invoiceType) {
		return "Self-Billing Invoice"
	}
	return "Invoice"
}

func isPayroll(invoiceType invoicedomain.InvoiceType) bool {
	return invoiceType == invoicedomain.InvoiceTypePayroll
}
