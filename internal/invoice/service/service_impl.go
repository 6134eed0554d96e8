package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/clock"
	"github.com/kofiy77/joyjoy-Locums/internal/config"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	obsmetrics "github.com/kofiy77/joyjoy-Locums/internal/observability/metrics"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
	shiftdomain "github.com/kofiy77/joyjoy-Locums/internal/shift/domain"
	"github.com/kofiy77/joyjoy-Locums/pkg/db"
	"github.com/kofiy77/joyjoy-Locums/pkg/db/pagination"
	"github.com/kofiy77/joyjoy-Locums/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Calc       ratecalcdomain.Service
	BillingCfg *config.BillingConfigHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	calc       ratecalcdomain.Service
	billingCfg *config.BillingConfigHolder

	invoicerepo  repository.Repository[invoicedomain.Invoice]
	lineitemrepo repository.Repository[invoicedomain.InvoiceLineItem]
	settingsrepo repository.Repository[invoicedomain.InvoiceSettings]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		calc:       p.Calc,
		billingCfg: p.BillingCfg,

		invoicerepo:  repository.ProvideStore[invoicedomain.Invoice](p.DB),
		lineitemrepo: repository.ProvideStore[invoicedomain.InvoiceLineItem](p.DB),
		settingsrepo: repository.ProvideStore[invoicedomain.InvoiceSettings](p.DB),
	}
}

func (s *Service) Aggregate(ctx context.Context, periodID snowflake.ID, invoiceType invoicedomain.InvoiceType) ([]invoicedomain.RecipientAggregate, error) {
	if invoiceType != invoicedomain.InvoiceTypeClient && invoiceType != invoicedomain.InvoiceTypePayroll {
		return nil, invoicedomain.ErrInvalidInvoiceType
	}

	period, err := s.loadPeriod(ctx, s.db, periodID, false)
	if err != nil {
		return nil, err
	}

	return s.aggregate(ctx, s.db, *period, invoiceType)
}

func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateInvoicesRequest) (invoicedomain.GenerateInvoicesResult, error) {
	if req.InvoiceType != invoicedomain.InvoiceTypeClient && req.InvoiceType != invoicedomain.InvoiceTypePayroll {
		return invoicedomain.GenerateInvoicesResult{}, invoicedomain.ErrInvalidInvoiceType
	}

	var result invoicedomain.GenerateInvoicesResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := s.loadPeriod(ctx, tx, req.BillingPeriodID, true)
		if err != nil {
			return err
		}
		// A closed period is immutable; cancel-and-rebill happens in a later
		// period, never by regenerating into this one.
		if period.Status == billingperioddomain.BillingPeriodStatusClosed {
			return billingperioddomain.ErrPeriodClosed
		}
		if alreadyGenerated(*period, req.InvoiceType) {
			return invoicedomain.ErrAlreadyGenerated
		}

		settings, err := s.loadSettingsForUpdate(ctx, tx)
		if err != nil {
			return err
		}

		aggregates, err := s.aggregate(ctx, tx, *period, req.InvoiceType)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		periodTotal := decimal.Zero
		for _, agg := range aggregates {
			result.Skipped = append(result.Skipped, agg.Errors...)
			if len(agg.Lines) == 0 {
				continue
			}
			invoice, err := s.insertInvoiceWithLines(ctx, tx, *period, req.InvoiceType, settings, agg, now)
			if err != nil {
				return err
			}
			periodTotal = periodTotal.Add(invoice.TotalAmount)
			result.Invoices = append(result.Invoices, *invoice)
		}
		if len(result.Invoices) == 0 {
			return invoicedomain.ErrNoBillableShifts
		}

		if err := s.persistCounters(ctx, tx, settings, now); err != nil {
			return err
		}
		return s.markPeriodGenerated(ctx, tx, *period, req.InvoiceType, periodTotal, now)
	})
	if err != nil {
		return invoicedomain.GenerateInvoicesResult{}, err
	}

	obsmetrics.AddInvoicesGenerated(string(req.InvoiceType), len(result.Invoices))
	s.log.Info("invoices generated",
		zap.String("billing_period_id", req.BillingPeriodID.String()),
		zap.String("invoice_type", string(req.InvoiceType)),
		zap.Int("count", len(result.Invoices)),
	)
	return result, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	size := req.PageSize
	if size <= 0 {
		size = 25
	}

	query := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Order("id DESC").
		Limit(size + 1)

	if req.InvoiceType != "" {
		query = query.Where("invoice_type = ?", req.InvoiceType)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.BillingPeriodID != nil {
		query = query.Where("billing_period_id = ?", *req.BillingPeriodID)
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		query = query.Where("id < ?", cursor.ID)
	}

	var invoices []invoicedomain.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	invoices, pageInfo := pagination.BuildPageInfo(invoices, size, func(inv invoicedomain.Invoice) string {
		return pagination.EncodeCursor(pagination.Cursor{ID: inv.ID.String()})
	})
	return invoicedomain.ListInvoiceResponse{
		PageInfo: pageInfo,
		Invoices: invoices,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Preload("LineItems").
		Where("id = ?", id).
		Limit(1).
		Find(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return &invoice, nil
}

func (s *Service) MarkSent(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return s.transition(ctx, id,
		[]invoicedomain.InvoiceStatus{invoicedomain.InvoiceStatusDraft},
		invoicedomain.InvoiceStatusSent,
		func(invoice *invoicedomain.Invoice, now time.Time) map[string]any {
			invoice.SentAt = &now
			return map[string]any{"sent_at": now}
		},
	)
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	return s.transition(ctx, id,
		[]invoicedomain.InvoiceStatus{invoicedomain.InvoiceStatusSent, invoicedomain.InvoiceStatusOverdue},
		invoicedomain.InvoiceStatusPaid,
		func(invoice *invoicedomain.Invoice, now time.Time) map[string]any {
			invoice.PaidAt = &now
			return map[string]any{"paid_at": now}
		},
	)
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	invoice, err := s.transition(ctx, id,
		[]invoicedomain.InvoiceStatus{
			invoicedomain.InvoiceStatusDraft,
			invoicedomain.InvoiceStatusSent,
			invoicedomain.InvoiceStatusOverdue,
		},
		invoicedomain.InvoiceStatusCancelled,
		func(invoice *invoicedomain.Invoice, now time.Time) map[string]any {
			invoice.CancelledAt = &now
			return map[string]any{"cancelled_at": now}
		},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice cancelled, shifts released for re-billing",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return invoice, nil
}

func (s *Service) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	result := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("status = ? AND due_at < ?", invoicedomain.InvoiceStatusSent, now).
		Updates(map[string]any{
			"status":     invoicedomain.InvoiceStatusOverdue,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

func (s *Service) Settings(ctx context.Context) (*invoicedomain.InvoiceSettings, error) {
	settings, err := s.settingsrepo.FindOne(ctx, &invoicedomain.InvoiceSettings{ID: invoicedomain.SettingsRowID})
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, invoicedomain.ErrSettingsNotFound
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, updated invoicedomain.InvoiceSettings) (*invoicedomain.InvoiceSettings, error) {
	var settings *invoicedomain.InvoiceSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.loadSettingsForUpdate(ctx, tx)
		if err != nil {
			return err
		}

		// Counters never move backwards.
		if updated.NextClientInvoiceNumber < current.NextClientInvoiceNumber {
			updated.NextClientInvoiceNumber = current.NextClientInvoiceNumber
		}
		if updated.NextPayrollInvoiceNumber < current.NextPayrollInvoiceNumber {
			updated.NextPayrollInvoiceNumber = current.NextPayrollInvoiceNumber
		}

		updated.ID = invoicedomain.SettingsRowID
		updated.UpdatedAt = s.clock.Now()
		err = tx.WithContext(ctx).
			Model(&invoicedomain.InvoiceSettings{}).
			Where("id = ?", invoicedomain.SettingsRowID).
			Updates(map[string]any{
				"client_invoice_prefix":       updated.ClientInvoicePrefix,
				"payroll_invoice_prefix":      updated.PayrollInvoicePrefix,
				"next_client_invoice_number":  updated.NextClientInvoiceNumber,
				"next_payroll_invoice_number": updated.NextPayrollInvoiceNumber,
				"vat_rate":                    updated.VATRate,
				"vat_registered":              updated.VATRegistered,
				"vat_number":                  updated.VATNumber,
				"company_registration_number": updated.CompanyRegistrationNumber,
				"payment_terms_days":          updated.PaymentTermsDays,
				"updated_at":                  updated.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}
		settings = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

type billableShiftRow struct {
	ShiftID        snowflake.ID
	ShiftRef       string
	Role           string
	Date           time.Time
	StartTime      string
	EndTime        string
	StaffID        *snowflake.ID
	StaffName      string
	RecipientID    snowflake.ID
	RecipientName  string
	RecipientEmail string
	RecipientAddr  string
	VATRegistered  bool
	VATNumber      string
	PayrollRef     string
	PaymentTerms   int
}

// aggregate prices every unbilled completed shift in the period and groups
// the lines by recipient. Shifts already on a non-cancelled invoice of the
// same type are excluded, so cancelling an invoice releases its shifts.
func (s *Service) aggregate(ctx context.Context, tx *gorm.DB, period billingperioddomain.BillingPeriod, invoiceType invoicedomain.InvoiceType) ([]invoicedomain.RecipientAggregate, error) {
	rows, err := s.listBillableShifts(ctx, tx, period, invoiceType)
	if err != nil {
		return nil, err
	}

	roundQuarter := s.billingCfg.Get().RoundToQuarterHour

	byRecipient := make(map[snowflake.ID]*invoicedomain.RecipientAggregate)
	var order []snowflake.ID
	for _, row := range rows {
		agg := groupFor(byRecipient, &order, row)

		calc, err := s.calc.Compute(ctx, ratecalcdomain.ShiftInput{
			ShiftID:   &row.ShiftID,
			Role:      row.Role,
			Date:      row.Date,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
		})
		if err != nil {
			s.log.Warn("shift cannot be priced",
				zap.String("shift_id", row.ShiftID.String()),
				zap.String("role", row.Role),
				zap.Error(err),
			)
			agg.Errors = append(agg.Errors, invoicedomain.AggregateError{
				ShiftID:   row.ShiftID,
				ShiftDate: row.Date,
				Role:      row.Role,
				Reason:    err.Error(),
			})
			continue
		}

		rate := calc.FinalBillRate
		if invoiceType == invoicedomain.InvoiceTypePayroll {
			rate = calc.FinalPayRate
		}

		hours := calc.DurationHours
		if roundQuarter {
			hours = roundToQuarterHour(hours)
		}

		snapshot, err := json.Marshal(calc.Applied)
		if err != nil {
			return nil, err
		}

		line := invoicedomain.AggregateLine{
			ShiftID:            row.ShiftID,
			StaffID:            row.StaffID,
			StaffName:          row.StaffName,
			ShiftDate:          row.Date,
			Role:               row.Role,
			StartTime:          row.StartTime,
			EndTime:            row.EndTime,
			Description:        fmt.Sprintf("%s shift %s on %s (%s-%s)", row.Role, row.ShiftRef, row.Date.Format("2006-01-02"), row.StartTime, row.EndTime),
			TotalHours:         calc.DurationHours,
			HoursBilled:        hours,
			UnitRate:           rate,
			AppliedMultipliers: snapshot,
			Amount:             rate.Mul(hours).Round(2),
		}

		agg.Lines = append(agg.Lines, line)
		agg.Subtotal = agg.Subtotal.Add(line.Amount)
	}

	aggregates := make([]invoicedomain.RecipientAggregate, 0, len(order))
	for _, id := range order {
		aggregates = append(aggregates, *byRecipient[id])
	}
	return aggregates, nil
}

func groupFor(byRecipient map[snowflake.ID]*invoicedomain.RecipientAggregate, order *[]snowflake.ID, row billableShiftRow) *invoicedomain.RecipientAggregate {
	agg, ok := byRecipient[row.RecipientID]
	if !ok {
		agg = &invoicedomain.RecipientAggregate{
			RecipientID:    row.RecipientID,
			RecipientName:  row.RecipientName,
			RecipientEmail: row.RecipientEmail,
			RecipientAddr:  row.RecipientAddr,
			VATRegistered:  row.VATRegistered,
			VATNumber:      row.VATNumber,
			PayrollRef:     row.PayrollRef,
			PaymentTerms:   row.PaymentTerms,
		}
		byRecipient[row.RecipientID] = agg
		*order = append(*order, row.RecipientID)
	}
	return agg
}

func (s *Service) listBillableShifts(ctx context.Context, tx *gorm.DB, period billingperioddomain.BillingPeriod, invoiceType invoicedomain.InvoiceType) ([]billableShiftRow, error) {
	var rows []billableShiftRow
	var err error
	switch invoiceType {
	case invoicedomain.InvoiceTypeClient:
		err = tx.WithContext(ctx).Raw(
			`SELECT s.id AS shift_id, s.shift_ref, s.role, s.date, s.start_time, s.end_time,
				s.staff_id, worker.name AS staff_name,
				p.id AS recipient_id, p.name AS recipient_name,
				p.billing_contact_email AS recipient_email, p.address AS recipient_addr,
				p.vat_registered, p.vat_number, p.payment_terms_days AS payment_terms
			 FROM shifts s
			 JOIN practices p ON p.id = s.practice_id
			 LEFT JOIN staff worker ON worker.id = s.staff_id
			 WHERE s.status = ?
			   AND s.date >= ? AND s.date < ?
			   AND NOT EXISTS (
				SELECT 1
				FROM invoice_line_items li
				JOIN invoices i ON i.id = li.invoice_id
				WHERE li.shift_id = s.id AND i.invoice_type = ? AND i.status <> ?
			   )
			 ORDER BY p.id, s.date, s.id`,
			shiftdomain.ShiftStatusCompleted,
			period.PeriodStart,
			period.PeriodEnd,
			invoiceType,
			invoicedomain.InvoiceStatusCancelled,
		).Scan(&rows).Error
	case invoicedomain.InvoiceTypePayroll:
		err = tx.WithContext(ctx).Raw(
			`SELECT s.id AS shift_id, s.shift_ref, s.role, s.date, s.start_time, s.end_time,
				s.staff_id, st.name AS staff_name,
				st.id AS recipient_id, st.name AS recipient_name,
				st.email AS recipient_email, st.payroll_ref, st.ni_number AS vat_number
			 FROM shifts s
			 JOIN staff st ON st.id = s.staff_id
			 WHERE s.status = ?
			   AND s.staff_id IS NOT NULL
			   AND s.date >= ? AND s.date < ?
			   AND NOT EXISTS (
				SELECT 1
				FROM invoice_line_items li
				JOIN invoices i ON i.id = li.invoice_id
				WHERE li.shift_id = s.id AND i.invoice_type = ? AND i.status <> ?
			   )
			 ORDER BY st.id, s.date, s.id`,
			shiftdomain.ShiftStatusCompleted,
			period.PeriodStart,
			period.PeriodEnd,
			invoiceType,
			invoicedomain.InvoiceStatusCancelled,
		).Scan(&rows).Error
	default:
		return nil, invoicedomain.ErrInvalidInvoiceType
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) insertInvoiceWithLines(
	ctx context.Context,
	tx *gorm.DB,
	period billingperioddomain.BillingPeriod,
	invoiceType invoicedomain.InvoiceType,
	settings *invoicedomain.InvoiceSettings,
	agg invoicedomain.RecipientAggregate,
	now time.Time,
) (*invoicedomain.Invoice, error) {
	// Subtotal is the exact sum of rounded line amounts. VAT is applied to
	// the subtotal and rounded once, never per line. VAT is charged only
	// while the agency itself is VAT-registered; payroll self-billing
	// invoices never carry it.
	subtotal := agg.Subtotal
	vatRate := decimal.Zero
	vatAmount := decimal.Zero
	if invoiceType == invoicedomain.InvoiceTypeClient && settings.VATRegistered {
		vatRate = settings.VATRate
		vatAmount = subtotal.Mul(vatRate).Div(decimal.NewFromInt(100)).Round(2)
	}

	terms := agg.PaymentTerms
	if terms <= 0 {
		terms = settings.PaymentTermsDays
	}

	invoice := invoicedomain.Invoice{
		ID:              s.genID.Generate(),
		InvoiceNumber:   nextInvoiceNumber(settings, invoiceType),
		InvoiceType:     invoiceType,
		BillingPeriodID: period.ID,
		RecipientID:     agg.RecipientID,
		RecipientName:   agg.RecipientName,
		RecipientEmail:  agg.RecipientEmail,
		RecipientAddr:   agg.RecipientAddr,
		VATNumber:       agg.VATNumber,
		PayrollRef:      agg.PayrollRef,
		Status:          invoicedomain.InvoiceStatusDraft,
		SubtotalAmount:  subtotal,
		VATRate:         vatRate,
		VATAmount:       vatAmount,
		TotalAmount:     subtotal.Add(vatAmount),
		Currency:        "GBP",
		PeriodStart:     period.PeriodStart,
		PeriodEnd:       period.PeriodEnd,
		IssuedAt:        now,
		DueAt:           now.AddDate(0, 0, terms),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.invoicerepo.WithTrx(tx).Create(ctx, &invoice); err != nil {
		return nil, err
	}

	lines := make([]*invoicedomain.InvoiceLineItem, 0, len(agg.Lines))
	for _, line := range agg.Lines {
		lines = append(lines, &invoicedomain.InvoiceLineItem{
			ID:                 s.genID.Generate(),
			InvoiceID:          invoice.ID,
			ShiftID:            line.ShiftID,
			StaffID:            line.StaffID,
			StaffName:          line.StaffName,
			ShiftDate:          line.ShiftDate,
			Role:               line.Role,
			StartTime:          line.StartTime,
			EndTime:            line.EndTime,
			Description:        line.Description,
			TotalHours:         line.TotalHours,
			HoursBilled:        line.HoursBilled,
			UnitRate:           line.UnitRate,
			AppliedMultipliers: line.AppliedMultipliers,
			Amount:             line.Amount,
			CreatedAt:          now,
		})
	}
	if err := s.lineitemrepo.WithTrx(tx).BatchCreate(ctx, lines); err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (s *Service) transition(
	ctx context.Context,
	id snowflake.ID,
	from []invoicedomain.InvoiceStatus,
	to invoicedomain.InvoiceStatus,
	stamp func(*invoicedomain.Invoice, time.Time) map[string]any,
) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := db.WithRowLock(tx.WithContext(ctx)).
			Where("id = ?", id).
			Limit(1).
			Find(&invoice).Error
		if err != nil {
			return err
		}
		if invoice.ID == 0 {
			return invoicedomain.ErrInvoiceNotFound
		}

		allowed := false
		for _, status := range from {
			if invoice.Status == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return invoicedomain.ErrInvalidTransition
		}

		now := s.clock.Now()
		updates := stamp(&invoice, now)
		updates["status"] = to
		updates["updated_at"] = now
		invoice.Status = to
		invoice.UpdatedAt = now

		return tx.WithContext(ctx).
			Model(&invoicedomain.Invoice{}).
			Where("id = ?", invoice.ID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) loadPeriod(ctx context.Context, tx *gorm.DB, id snowflake.ID, forUpdate bool) (*billingperioddomain.BillingPeriod, error) {
	query := tx.WithContext(ctx)
	if forUpdate {
		query = db.WithRowLock(query)
	}

	var period billingperioddomain.BillingPeriod
	err := query.Where("id = ?", id).Limit(1).Find(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, billingperioddomain.ErrPeriodNotFound
	}
	return &period, nil
}

func (s *Service) loadSettingsForUpdate(ctx context.Context, tx *gorm.DB) (*invoicedomain.InvoiceSettings, error) {
	var settings invoicedomain.InvoiceSettings
	err := db.WithRowLock(tx.WithContext(ctx)).
		Where("id = ?", invoicedomain.SettingsRowID).
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == 0 {
		return nil, invoicedomain.ErrSettingsNotFound
	}
	return &settings, nil
}

func (s *Service) persistCounters(ctx context.Context, tx *gorm.DB, settings *invoicedomain.InvoiceSettings, now time.Time) error {
	return tx.WithContext(ctx).
		Model(&invoicedomain.InvoiceSettings{}).
		Where("id = ?", invoicedomain.SettingsRowID).
		Updates(map[string]any{
			"next_client_invoice_number":  settings.NextClientInvoiceNumber,
			"next_payroll_invoice_number": settings.NextPayrollInvoiceNumber,
			"updated_at":                  now,
		}).Error
}

func (s *Service) markPeriodGenerated(ctx context.Context, tx *gorm.DB, period billingperioddomain.BillingPeriod, invoiceType invoicedomain.InvoiceType, total decimal.Decimal, now time.Time) error {
	shifts, hours, err := s.billedShiftTotals(ctx, tx, period)
	if err != nil {
		return err
	}

	updates := map[string]any{
		"total_shifts": shifts,
		"total_hours":  hours,
		"updated_at":   now,
	}
	switch invoiceType {
	case invoicedomain.InvoiceTypeClient:
		updates["client_invoices_generated"] = true
		updates["total_client_amount"] = total
	case invoicedomain.InvoiceTypePayroll:
		updates["payroll_invoices_generated"] = true
		updates["total_payroll_amount"] = total
	}
	return tx.WithContext(ctx).
		Model(&billingperioddomain.BillingPeriod{}).
		Where("id = ?", period.ID).
		Updates(updates).Error
}

// billedShiftTotals counts the distinct shifts billed in the period and sums
// their billable hours. Each shift counts once even when it appears on both a
// client and a payroll invoice.
func (s *Service) billedShiftTotals(ctx context.Context, tx *gorm.DB, period billingperioddomain.BillingPeriod) (int64, decimal.Decimal, error) {
	var row struct {
		TotalShifts int64
		TotalHours  decimal.Decimal
	}
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS total_shifts, COALESCE(SUM(t.hours), 0) AS total_hours
		 FROM (
			SELECT li.shift_id, MAX(li.hours_billed) AS hours
			FROM invoice_line_items li
			JOIN invoices i ON i.id = li.invoice_id
			WHERE i.billing_period_id = ? AND i.status <> ?
			GROUP BY li.shift_id
		 ) t`,
		period.ID,
		invoicedomain.InvoiceStatusCancelled,
	).Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return row.TotalShifts, row.TotalHours, nil
}

func alreadyGenerated(period billingperioddomain.BillingPeriod, invoiceType invoicedomain.InvoiceType) bool {
	if invoiceType == invoicedomain.InvoiceTypeClient {
		return period.ClientInvoicesGenerated
	}
	return period.PayrollInvoicesGenerated
}

// nextInvoiceNumber formats the next number for the given type and advances
// the in-memory counter. The caller persists counters once per batch.
func nextInvoiceNumber(settings *invoicedomain.InvoiceSettings, invoiceType invoicedomain.InvoiceType) string {
	if invoiceType == invoicedomain.InvoiceTypeClient {
		n := settings.NextClientInvoiceNumber
		settings.NextClientInvoiceNumber++
		return fmt.Sprintf("%s%d", settings.ClientInvoicePrefix, n)
	}
	n := settings.NextPayrollInvoiceNumber
	settings.NextPayrollInvoiceNumber++
	return fmt.Sprintf("%s%d", settings.PayrollInvoicePrefix, n)
}

// roundToQuarterHour rounds billable hours to the nearest 0.25.
func roundToQuarterHour(hours decimal.Decimal) decimal.Decimal {
	four := decimal.NewFromInt(4)
	return hours.Mul(four).Round(0).Div(four)
}
