package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/clock"
	"github.com/kofiy77/joyjoy-Locums/internal/config"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	shiftdomain "github.com/kofiy77/joyjoy-Locums/internal/shift/domain"
	"github.com/kofiy77/joyjoy-Locums/pkg/db"
	"github.com/kofiy77/joyjoy-Locums/pkg/db/pagination"
	"github.com/kofiy77/joyjoy-Locums/pkg/repository"
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
	BillingCfg *config.BillingConfigHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	billingCfg *config.BillingConfigHolder
	periodrepo repository.Repository[billingperioddomain.BillingPeriod]
}

func NewService(p ServiceParam) billingperioddomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("billingperiod.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		billingCfg: p.BillingCfg,
		periodrepo: repository.ProvideStore[billingperioddomain.BillingPeriod](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req billingperioddomain.CreateBillingPeriodRequest) (*billingperioddomain.BillingPeriod, error) {
	start := truncateDate(req.PeriodStart)
	end := truncateDate(req.PeriodEnd)
	if !end.After(start) {
		return nil, billingperioddomain.ErrInvalidPeriod
	}

	var period *billingperioddomain.BillingPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overlapping, err := s.countOverlapping(ctx, tx, start, end)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return billingperioddomain.ErrOverlappingPeriod
		}

		name := req.PeriodName
		if name == "" {
			name = periodName(start, end)
		}
		period = &billingperioddomain.BillingPeriod{
			ID:          s.genID.Generate(),
			PeriodName:  name,
			PeriodStart: start,
			PeriodEnd:   end,
			Status:      billingperioddomain.BillingPeriodStatusOpen,
			Notes:       req.Notes,
		}
		return s.periodrepo.WithTrx(tx).Create(ctx, period)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("billing period created",
		zap.String("period_id", period.ID.String()),
		zap.Time("period_start", period.PeriodStart),
		zap.Time("period_end", period.PeriodEnd),
	)
	return period, nil
}

func (s *Service) List(ctx context.Context, req billingperioddomain.ListBillingPeriodRequest) (billingperioddomain.ListBillingPeriodResponse, error) {
	size := req.PageSize
	if size <= 0 {
		size = 25
	}

	query := s.db.WithContext(ctx).
		Model(&billingperioddomain.BillingPeriod{}).
		Order("period_start DESC, id DESC").
		Limit(size + 1)

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return billingperioddomain.ListBillingPeriodResponse{}, err
		}
		query = query.Where("id < ?", cursor.ID)
	}

	var periods []billingperioddomain.BillingPeriod
	if err := query.Find(&periods).Error; err != nil {
		return billingperioddomain.ListBillingPeriodResponse{}, err
	}

	periods, pageInfo := pagination.BuildPageInfo(periods, size, func(p billingperioddomain.BillingPeriod) string {
		return pagination.EncodeCursor(pagination.Cursor{ID: p.ID.String()})
	})
	return billingperioddomain.ListBillingPeriodResponse{
		PageInfo:       pageInfo,
		BillingPeriods: periods,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*billingperioddomain.BillingPeriod, error) {
	period, err := s.periodrepo.FindOne(ctx, &billingperioddomain.BillingPeriod{ID: id})
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, billingperioddomain.ErrPeriodNotFound
	}
	return period, nil
}

func (s *Service) FindForDate(ctx context.Context, date time.Time) (*billingperioddomain.BillingPeriod, error) {
	d := truncateDate(date)

	var period billingperioddomain.BillingPeriod
	err := s.db.WithContext(ctx).
		Where("period_start <= ? AND period_end > ?", d, d).
		Order("period_start DESC").
		Limit(1).
		Find(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, billingperioddomain.ErrPeriodNotFound
	}
	return &period, nil
}

func (s *Service) EnsureCurrentPeriod(ctx context.Context) (*billingperioddomain.BillingPeriod, error) {
	now := s.clock.Now()
	today := truncateDate(now)

	var period *billingperioddomain.BillingPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing billingperioddomain.BillingPeriod
		err := db.WithRowLock(tx.WithContext(ctx)).
			Where("period_start <= ? AND period_end > ?", today, today).
			Order("period_start DESC").
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != 0 {
			period = &existing
			return nil
		}

		frequency := billingperioddomain.BillingFrequency(s.billingCfg.Get().BillingFrequency)
		start, end := periodBounds(today, frequency)

		// A previous period may end mid-window; continue from its boundary
		// so periods never overlap.
		last, err := s.findLastPeriodBefore(ctx, tx, end)
		if err != nil {
			return err
		}
		if last != nil && last.PeriodEnd.After(start) {
			start = last.PeriodEnd
		}
		if !end.After(start) {
			return billingperioddomain.ErrInvalidPeriod
		}

		period = &billingperioddomain.BillingPeriod{
			ID:          s.genID.Generate(),
			PeriodName:  periodName(start, end),
			PeriodStart: start,
			PeriodEnd:   end,
			Status:      billingperioddomain.BillingPeriodStatusOpen,
		}
		if err := s.periodrepo.WithTrx(tx).Create(ctx, period); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return nil
			}
			return err
		}

		s.log.Info("billing period opened",
			zap.String("period_id", period.ID.String()),
			zap.String("frequency", string(frequency)),
			zap.Time("period_start", start),
			zap.Time("period_end", end),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return period, nil
}

func (s *Service) Close(ctx context.Context, id snowflake.ID, closedBy string) (*billingperioddomain.BillingPeriod, error) {
	var period billingperioddomain.BillingPeriod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := db.WithRowLock(tx.WithContext(ctx)).
			Where("id = ?", id).
			Limit(1).
			Find(&period).Error
		if err != nil {
			return err
		}
		if period.ID == 0 {
			return billingperioddomain.ErrPeriodNotFound
		}
		if period.Status == billingperioddomain.BillingPeriodStatusClosed {
			return billingperioddomain.ErrPeriodClosed
		}

		unbilled, err := s.countUnbilledShifts(ctx, tx, period)
		if err != nil {
			return err
		}
		if unbilled > 0 {
			s.log.Warn("refusing to close period with unbilled shifts",
				zap.String("period_id", period.ID.String()),
				zap.Int64("unbilled_shifts", unbilled),
			)
			return billingperioddomain.ErrUnbilledShifts
		}

		closedAt := s.clock.Now()
		period.Status = billingperioddomain.BillingPeriodStatusClosed
		period.ClosedAt = &closedAt
		period.ClosedBy = closedBy
		return tx.WithContext(ctx).
			Model(&billingperioddomain.BillingPeriod{}).
			Where("id = ?", period.ID).
			Updates(map[string]any{
				"status":     period.Status,
				"closed_at":  period.ClosedAt,
				"closed_by":  closedBy,
				"updated_at": closedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (s *Service) countOverlapping(ctx context.Context, tx *gorm.DB, start, end time.Time) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&billingperioddomain.BillingPeriod{}).
		Where("period_start < ? AND period_end > ?", end, start).
		Count(&count).Error
	return count, err
}

func (s *Service) findLastPeriodBefore(ctx context.Context, tx *gorm.DB, before time.Time) (*billingperioddomain.BillingPeriod, error) {
	var period billingperioddomain.BillingPeriod
	err := tx.WithContext(ctx).
		Where("period_end <= ?", before).
		Order("period_end DESC").
		Limit(1).
		Find(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

// countUnbilledShifts counts completed shifts inside the period that no
// non-cancelled invoice line item references.
func (s *Service) countUnbilledShifts(ctx context.Context, tx *gorm.DB, period billingperioddomain.BillingPeriod) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM shifts s
		 WHERE s.status = ?
		   AND s.date >= ? AND s.date < ?
		   AND NOT EXISTS (
			SELECT 1
			FROM invoice_line_items li
			JOIN invoices i ON i.id = li.invoice_id
			WHERE li.shift_id = s.id AND i.status <> ?
		   )`,
		shiftdomain.ShiftStatusCompleted,
		period.PeriodStart,
		period.PeriodEnd,
		invoicedomain.InvoiceStatusCancelled,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// periodBounds aligns a period window containing the given day to the billing
// frequency. Weekly and fortnightly periods start on a Monday, monthly
// periods on the first of the month.
func periodBounds(day time.Time, frequency billingperioddomain.BillingFrequency) (time.Time, time.Time) {
	switch frequency {
	case billingperioddomain.FrequencyMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	case billingperioddomain.FrequencyFortnightly:
		start := mondayOf(day)
		// Anchor fortnights to ISO week parity so restarts land on the
		// same boundaries.
		if _, week := start.ISOWeek(); week%2 == 0 {
			start = start.AddDate(0, 0, -7)
		}
		return start, start.AddDate(0, 0, 14)
	default:
		start := mondayOf(day)
		return start, start.AddDate(0, 0, 7)
	}
}

func periodName(start, end time.Time) string {
	return start.Format("2 Jan 2006") + " to " + end.AddDate(0, 0, -1).Format("2 Jan 2006")
}

func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func truncateDate(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
