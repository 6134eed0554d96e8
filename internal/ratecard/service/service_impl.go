package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
	"github.com/kofiy77/joyjoy-Locums/pkg/db"
	"github.com/kofiy77/joyjoy-Locums/pkg/db/option"
	"github.com/kofiy77/joyjoy-Locums/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID          *snowflake.Node
	raterepo       repository.Repository[ratecarddomain.RoleBaseRate]
	multiplierrepo repository.Repository[ratecarddomain.RateMultiplier]
	holidayrepo    repository.Repository[ratecarddomain.BankHoliday]
	windowrepo     repository.Repository[ratecarddomain.ShiftTimeWindow]
}

func NewService(p ServiceParam) ratecarddomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("ratecard.service"),

		genID:          p.GenID,
		raterepo:       repository.ProvideStore[ratecarddomain.RoleBaseRate](p.DB),
		multiplierrepo: repository.ProvideStore[ratecarddomain.RateMultiplier](p.DB),
		holidayrepo:    repository.ProvideStore[ratecarddomain.BankHoliday](p.DB),
		windowrepo:     repository.ProvideStore[ratecarddomain.ShiftTimeWindow](p.DB),
	}
}

func (s *Service) BaseRate(ctx context.Context, role string) (ratecarddomain.BaseRates, error) {
	card, err := s.raterepo.FindOne(ctx, &ratecarddomain.RoleBaseRate{
		Role:     strings.TrimSpace(role),
		IsActive: true,
	})
	if err != nil {
		return ratecarddomain.BaseRates{}, err
	}
	if card == nil {
		return ratecarddomain.BaseRates{}, ratecarddomain.ErrRoleNotFound
	}
	return ratecarddomain.BaseRates{
		PayRate:  card.WorkerPayRateMin,
		BillRate: card.ClientBillRateMin,
	}, nil
}

func (s *Service) ActiveMultipliers(ctx context.Context) ([]ratecarddomain.RateMultiplier, error) {
	rows, err := s.multiplierrepo.Find(ctx, &ratecarddomain.RateMultiplier{IsActive: true})
	if err != nil {
		return nil, err
	}

	multipliers := make([]ratecarddomain.RateMultiplier, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		multipliers = append(multipliers, *row)
	}

	// Priority desc, declaration order (snowflake IDs are monotonic) asc.
	sort.SliceStable(multipliers, func(i, j int) bool {
		if multipliers[i].Priority != multipliers[j].Priority {
			return multipliers[i].Priority > multipliers[j].Priority
		}
		return multipliers[i].ID < multipliers[j].ID
	})

	return multipliers, nil
}

func (s *Service) IsBankHoliday(ctx context.Context, date time.Time, region string) (bool, string, error) {
	region = strings.TrimSpace(region)
	rows, err := s.holidayrepo.Find(ctx, &ratecarddomain.BankHoliday{})
	if err != nil {
		return false, "", err
	}

	day := date.UTC().Truncate(24 * time.Hour)
	for _, holiday := range rows {
		if holiday == nil {
			continue
		}
		if region != "" && holiday.Region != "" && holiday.Region != region {
			continue
		}
		if sameDate(holiday.Date, day) {
			return true, holiday.Name, nil
		}
		if holiday.IsRecurring && holiday.RecurringPattern != nil {
			resolved, err := ratecarddomain.ResolveRecurringPattern(*holiday.RecurringPattern, day.Year())
			if err != nil {
				s.log.Warn("skipping unparseable recurrence",
					zap.String("holiday", holiday.Name),
					zap.String("pattern", *holiday.RecurringPattern),
					zap.Error(err),
				)
				continue
			}
			if sameDate(resolved, day) {
				return true, holiday.Name, nil
			}
		}
	}
	return false, "", nil
}

func (s *Service) ClassifyShiftWindow(ctx context.Context, startTime, endTime string) (string, error) {
	start, err := ratecarddomain.ParseClock(startTime)
	if err != nil {
		return "", err
	}
	end, err := ratecarddomain.ParseClock(endTime)
	if err != nil {
		return "", err
	}
	if end <= start {
		end += minutesPerDay
	}

	windows, err := s.windowrepo.Find(ctx, &ratecarddomain.ShiftTimeWindow{IsActive: true},
		option.WithOrder("id asc"))
	if err != nil {
		return "", err
	}

	best := ratecarddomain.DefaultShiftType
	bestOverlap := 0
	for _, window := range windows {
		if window == nil {
			continue
		}
		ws, err := ratecarddomain.ParseClock(window.StartTime)
		if err != nil {
			return "", err
		}
		we, err := ratecarddomain.ParseClock(window.EndTime)
		if err != nil {
			return "", err
		}
		if we <= ws {
			we += minutesPerDay
		}

		// Windows repeat daily; check the window on the shift's first day and
		// again shifted a day forward for shifts spanning midnight.
		overlap := overlapMinutes(start, end, ws, we)
		if next := overlapMinutes(start, end, ws+minutesPerDay, we+minutesPerDay); next > overlap {
			overlap = next
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = window.ShiftType
		}
	}

	return best, nil
}

const minutesPerDay = 24 * 60

func overlapMinutes(aStart, aEnd, bStart, bEnd int) int {
	low := aStart
	if bStart > low {
		low = bStart
	}
	high := aEnd
	if bEnd < high {
		high = bEnd
	}
	if high <= low {
		return 0
	}
	return high - low
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (s *Service) CreateRoleBaseRate(ctx context.Context, rate *ratecarddomain.RoleBaseRate) error {
	rate.Role = strings.TrimSpace(rate.Role)
	if rate.Role == "" || rate.WorkerPayRateMin.IsNegative() || rate.ClientBillRateMin.IsNegative() {
		return ratecarddomain.ErrInvalidRate
	}
	if rate.WorkerPayRateMax.LessThan(rate.WorkerPayRateMin) ||
		rate.ClientBillRateMax.LessThan(rate.ClientBillRateMin) {
		return ratecarddomain.ErrInvalidRate
	}
	if rate.ID == 0 {
		rate.ID = s.genID.Generate()
	}
	rate.IsActive = true
	if err := s.raterepo.Create(ctx, rate); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return ratecarddomain.ErrDuplicateRole
		}
		return err
	}
	return nil
}

func (s *Service) ListRoleBaseRates(ctx context.Context) ([]ratecarddomain.RoleBaseRate, error) {
	rows, err := s.raterepo.Find(ctx, &ratecarddomain.RoleBaseRate{}, option.WithOrder("role asc"))
	if err != nil {
		return nil, err
	}
	rates := make([]ratecarddomain.RoleBaseRate, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		rates = append(rates, *row)
	}
	return rates, nil
}

func (s *Service) DeactivateRoleBaseRate(ctx context.Context, role string) error {
	card, err := s.raterepo.FindOne(ctx, &ratecarddomain.RoleBaseRate{Role: strings.TrimSpace(role)})
	if err != nil {
		return err
	}
	if card == nil {
		return ratecarddomain.ErrRoleNotFound
	}
	return s.raterepo.Update(ctx, card.ID.String(), map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	})
}

func (s *Service) CreateMultiplier(ctx context.Context, multiplier *ratecarddomain.RateMultiplier) error {
	multiplier.Name = strings.TrimSpace(multiplier.Name)
	if multiplier.Name == "" || !multiplier.Multiplier.IsPositive() {
		return ratecarddomain.ErrInvalidMultiplier
	}
	if multiplier.ID == 0 {
		multiplier.ID = s.genID.Generate()
	}
	multiplier.IsActive = true
	if err := s.multiplierrepo.Create(ctx, multiplier); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return ratecarddomain.ErrDuplicateMultiplier
		}
		return err
	}
	return nil
}

func (s *Service) ListMultipliers(ctx context.Context) ([]ratecarddomain.RateMultiplier, error) {
	rows, err := s.multiplierrepo.Find(ctx, &ratecarddomain.RateMultiplier{},
		option.WithOrder("priority desc"), option.WithOrder("id asc"))
	if err != nil {
		return nil, err
	}
	multipliers := make([]ratecarddomain.RateMultiplier, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		multipliers = append(multipliers, *row)
	}
	return multipliers, nil
}

func (s *Service) CreateBankHoliday(ctx context.Context, holiday *ratecarddomain.BankHoliday) error {
	if holiday.IsRecurring {
		if holiday.RecurringPattern == nil {
			return ratecarddomain.ErrInvalidRecurringPattern
		}
		if _, err := ratecarddomain.ResolveRecurringPattern(*holiday.RecurringPattern, holiday.Date.Year()); err != nil {
			return err
		}
	}
	if holiday.ID == 0 {
		holiday.ID = s.genID.Generate()
	}
	holiday.Date = holiday.Date.UTC().Truncate(24 * time.Hour)
	if holiday.Region == "" {
		holiday.Region = "england-and-wales"
	}
	if err := s.holidayrepo.Create(ctx, holiday); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return ratecarddomain.ErrDuplicateBankHoliday
		}
		return err
	}
	return nil
}

func (s *Service) ListBankHolidays(ctx context.Context) ([]ratecarddomain.BankHoliday, error) {
	rows, err := s.holidayrepo.Find(ctx, &ratecarddomain.BankHoliday{}, option.WithOrder("date asc"))
	if err != nil {
		return nil, err
	}
	holidays := make([]ratecarddomain.BankHoliday, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		holidays = append(holidays, *row)
	}
	return holidays, nil
}

func (s *Service) CreateShiftTimeWindow(ctx context.Context, window *ratecarddomain.ShiftTimeWindow) error {
	if _, err := ratecarddomain.ParseClock(window.StartTime); err != nil {
		return err
	}
	if _, err := ratecarddomain.ParseClock(window.EndTime); err != nil {
		return err
	}
	if window.ID == 0 {
		window.ID = s.genID.Generate()
	}
	window.IsActive = true
	if err := s.windowrepo.Create(ctx, window); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return ratecarddomain.ErrDuplicateShiftWindow
		}
		return err
	}
	return nil
}

func (s *Service) ListShiftTimeWindows(ctx context.Context) ([]ratecarddomain.ShiftTimeWindow, error) {
	rows, err := s.windowrepo.Find(ctx, &ratecarddomain.ShiftTimeWindow{}, option.WithOrder("id asc"))
	if err != nil {
		return nil, err
	}
	windows := make([]ratecarddomain.ShiftTimeWindow, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		windows = append(windows, *row)
	}
	return windows, nil
}
