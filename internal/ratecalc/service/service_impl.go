package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kofiy77/joyjoy-Locums/internal/config"
	obsmetrics "github.com/kofiy77/joyjoy-Locums/internal/observability/metrics"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
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
	Catalog    ratecarddomain.Service
	BillingCfg *config.BillingConfigHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	catalog    ratecarddomain.Service
	billingCfg *config.BillingConfigHolder
	logrepo    repository.Repository[ratecalcdomain.RateCalculationLog]
}

func NewService(p ServiceParam) ratecalcdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("ratecalc.service"),

		genID:      p.GenID,
		catalog:    p.Catalog,
		billingCfg: p.BillingCfg,
		logrepo:    repository.ProvideStore[ratecalcdomain.RateCalculationLog](p.DB),
	}
}

func (s *Service) Compute(ctx context.Context, input ratecalcdomain.ShiftInput) (ratecalcdomain.Result, error) {
	base, err := s.catalog.BaseRate(ctx, input.Role)
	if err != nil {
		if errors.Is(err, ratecarddomain.ErrRoleNotFound) {
			return ratecalcdomain.Result{}, ratecalcdomain.ErrUnknownRole
		}
		return ratecalcdomain.Result{}, err
	}

	duration, err := shiftDuration(input.StartTime, input.EndTime)
	if err != nil {
		return ratecalcdomain.Result{}, err
	}

	applied, err := s.applicableMultipliers(ctx, input, duration)
	if err != nil {
		return ratecalcdomain.Result{}, err
	}

	// Multiplicative application in priority order; intermediates keep full
	// precision and only the final rates are rounded to currency precision.
	finalPay := base.PayRate
	finalBill := base.BillRate
	for _, m := range applied {
		finalPay = finalPay.Mul(m.Multiplier)
		finalBill = finalBill.Mul(m.Multiplier)
	}
	finalPay = finalPay.Round(2)
	finalBill = finalBill.Round(2)

	return ratecalcdomain.Result{
		DurationHours: duration.Round(2),
		BasePayRate:   base.PayRate,
		BaseBillRate:  base.BillRate,
		Applied:       applied,
		FinalPayRate:  finalPay,
		FinalBillRate: finalBill,
		TotalPayCost:  finalPay.Mul(duration).Round(2),
		TotalBillCost: finalBill.Mul(duration).Round(2),
	}, nil
}

func (s *Service) ComputeAndLog(ctx context.Context, input ratecalcdomain.ShiftInput) (ratecalcdomain.Result, error) {
	result, err := s.Compute(ctx, input)
	if err != nil {
		obsmetrics.IncRateCalculation("error")
		return ratecalcdomain.Result{}, err
	}
	obsmetrics.IncRateCalculation("ok")

	snapshot, err := json.Marshal(result.Applied)
	if err != nil {
		return ratecalcdomain.Result{}, err
	}

	entry := ratecalcdomain.RateCalculationLog{
		ID:                 s.genID.Generate(),
		ShiftID:            input.ShiftID,
		Role:               input.Role,
		ShiftDate:          input.Date.UTC().Truncate(24 * time.Hour),
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		ShiftDurationHours: result.DurationHours,
		BaseInternalRate:   result.BasePayRate,
		BaseExternalRate:   result.BaseBillRate,
		AppliedMultipliers: snapshot,
		FinalInternalRate:  result.FinalPayRate,
		FinalExternalRate:  result.FinalBillRate,
		TotalInternalCost:  result.TotalPayCost,
		TotalExternalCost:  result.TotalBillCost,
		CalculatedAt:       time.Now().UTC(),
	}
	if err := s.logrepo.Create(ctx, &entry); err != nil {
		return ratecalcdomain.Result{}, err
	}

	return result, nil
}

// applicableMultipliers walks the catalog's ordered rule table. Exactly one of
// the calendar/time-of-day multipliers (bank holiday, weekend, night) is
// selected — the first qualifying row in priority order — while overtime is
// evaluated independently and stacks on top.
func (s *Service) applicableMultipliers(
	ctx context.Context,
	input ratecalcdomain.ShiftInput,
	duration decimal.Decimal,
) ([]ratecalcdomain.AppliedMultiplier, error) {
	multipliers, err := s.catalog.ActiveMultipliers(ctx)
	if err != nil {
		return nil, err
	}
	if len(multipliers) == 0 {
		s.log.Warn("no active multipliers configured, using base rates",
			zap.String("role", input.Role),
			zap.Error(ratecalcdomain.ErrNoActiveMultipliers),
		)
		return nil, nil
	}

	cfg := s.billingCfg.Get()
	region := input.Region
	if region == "" {
		region = cfg.DefaultRegion
	}

	reasons := make(map[string]string, 4)

	isHoliday, holidayName, err := s.catalog.IsBankHoliday(ctx, input.Date, region)
	if err != nil {
		return nil, err
	}
	if isHoliday {
		reasons[ratecarddomain.MultiplierBankHoliday] = fmt.Sprintf("bank holiday: %s", holidayName)
	}

	switch input.Date.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		reasons[ratecarddomain.MultiplierWeekend] = fmt.Sprintf("weekend: %s", input.Date.UTC().Weekday())
	}

	shiftType, err := s.catalog.ClassifyShiftWindow(ctx, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}
	if shiftType == ratecarddomain.ShiftTypeNight {
		reasons[ratecarddomain.MultiplierNightShift] = fmt.Sprintf("%s-%s falls in the night window", input.StartTime, input.EndTime)
	}

	threshold := decimal.NewFromFloat(cfg.OvertimeThresholdHours)
	if duration.GreaterThan(threshold) {
		reasons[ratecarddomain.MultiplierOvertime] = fmt.Sprintf("duration %sh exceeds overtime threshold %sh",
			duration.Round(2), threshold)
	}

	var applied []ratecalcdomain.AppliedMultiplier
	calendarPicked := false
	for _, m := range multipliers {
		reason, qualified := reasons[m.Name]
		if !qualified {
			continue
		}
		switch m.Name {
		case ratecarddomain.MultiplierBankHoliday,
			ratecarddomain.MultiplierWeekend,
			ratecarddomain.MultiplierNightShift:
			if calendarPicked {
				continue
			}
			calendarPicked = true
		case ratecarddomain.MultiplierOvertime:
		default:
			continue
		}
		applied = append(applied, ratecalcdomain.AppliedMultiplier{
			Name:       m.Name,
			Multiplier: m.Multiplier,
			Reason:     reason,
		})
	}

	return applied, nil
}

// shiftDuration computes the positive duration in hours between two clock
// times, treating end < start as an overnight span into the next day. Equal
// start and end times are rejected rather than read as a 24 hour shift.
func shiftDuration(startTime, endTime string) (decimal.Decimal, error) {
	start, err := ratecarddomain.ParseClock(startTime)
	if err != nil {
		return decimal.Zero, ratecalcdomain.ErrInvalidShiftTime
	}
	end, err := ratecarddomain.ParseClock(endTime)
	if err != nil {
		return decimal.Zero, ratecalcdomain.ErrInvalidShiftTime
	}

	minutes := end - start
	if minutes < 0 {
		minutes += 24 * 60
	}
	if minutes <= 0 {
		return decimal.Zero, ratecalcdomain.ErrInvalidShiftTime
	}
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)), nil
}
