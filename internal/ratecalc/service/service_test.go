package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kofiy77/joyjoy-Locums/internal/config"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
	ratecardservice "github.com/kofiy77/joyjoy-Locums/internal/ratecard/service"
)

func setupCalc(t *testing.T) (ratecalcdomain.Service, ratecarddomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&ratecarddomain.RoleBaseRate{},
		&ratecarddomain.RateMultiplier{},
		&ratecarddomain.BankHoliday{},
		&ratecarddomain.ShiftTimeWindow{},
		&ratecalcdomain.RateCalculationLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	catalog := ratecardservice.NewService(ratecardservice.ServiceParam{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
	})

	holder := config.NewStaticBillingConfigHolder(config.BillingConfig{
		BillingFrequency:       "weekly",
		OvertimeThresholdHours: 10,
		RoundToQuarterHour:     true,
		DefaultRegion:          "england-and-wales",
	})

	svc := NewService(ServiceParam{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Catalog:    catalog,
		BillingCfg: holder,
	})

	seedCalcCatalog(t, catalog)
	return svc, catalog, conn
}

func seedCalcCatalog(t *testing.T, catalog ratecarddomain.Service) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, catalog.CreateRoleBaseRate(ctx, &ratecarddomain.RoleBaseRate{
		Role:              "Agency Nurse",
		WorkerPayRateMin:  dec(t, "18"),
		WorkerPayRateMax:  dec(t, "25"),
		ClientBillRateMin: dec(t, "28"),
		ClientBillRateMax: dec(t, "38"),
	}))

	for _, m := range []ratecarddomain.RateMultiplier{
		{Name: ratecarddomain.MultiplierBankHoliday, Description: "bank holiday", Multiplier: dec(t, "2.0"), Priority: 10},
		{Name: ratecarddomain.MultiplierWeekend, Description: "weekend", Multiplier: dec(t, "1.5"), Priority: 5},
		{Name: ratecarddomain.MultiplierNightShift, Description: "night", Multiplier: dec(t, "1.3"), Priority: 3},
		{Name: ratecarddomain.MultiplierOvertime, Description: "overtime", Multiplier: dec(t, "1.5"), Priority: 1},
	} {
		multiplier := m
		require.NoError(t, catalog.CreateMultiplier(ctx, &multiplier))
	}

	for _, w := range []ratecarddomain.ShiftTimeWindow{
		{ShiftType: ratecarddomain.ShiftTypeDay, StartTime: "08:00", EndTime: "18:00"},
		{ShiftType: ratecarddomain.ShiftTypeEvening, StartTime: "18:00", EndTime: "22:00"},
		{ShiftType: ratecarddomain.ShiftTypeNight, StartTime: "22:00", EndTime: "08:00"},
	} {
		window := w
		require.NoError(t, catalog.CreateShiftTimeWindow(ctx, &window))
	}

	require.NoError(t, catalog.CreateBankHoliday(ctx, &ratecarddomain.BankHoliday{
		Name: "New Year's Day",
		Date: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, catalog.CreateBankHoliday(ctx, &ratecarddomain.BankHoliday{
		Name: "Good Friday",
		Date: time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC),
	}))
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestComputeBankHolidayShift(t *testing.T) {
	svc, _, _ := setupCalc(t)

	result, err := svc.Compute(context.Background(), ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00",
		EndTime:   "16:00",
	})
	require.NoError(t, err)

	assert.True(t, result.DurationHours.Equal(dec(t, "8")))
	require.Len(t, result.Applied, 1)
	assert.Equal(t, ratecarddomain.MultiplierBankHoliday, result.Applied[0].Name)
	assert.True(t, result.FinalPayRate.Equal(dec(t, "36")), "got %s", result.FinalPayRate)
	assert.True(t, result.FinalBillRate.Equal(dec(t, "56")), "got %s", result.FinalBillRate)
	assert.True(t, result.TotalPayCost.Equal(dec(t, "288")), "got %s", result.TotalPayCost)
	assert.True(t, result.TotalBillCost.Equal(dec(t, "448")), "got %s", result.TotalBillCost)
}

func TestComputeBankHolidayBeatsWeekend(t *testing.T) {
	svc, catalog, _ := setupCalc(t)
	ctx := context.Background()

	// A plain Saturday picks the weekend multiplier.
	result, err := svc.Compute(ctx, ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.April, 4, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, ratecarddomain.MultiplierWeekend, result.Applied[0].Name)
	assert.True(t, result.FinalPayRate.Equal(dec(t, "27")))

	// Boxing Day 2026 falls on a Saturday; only the higher priority bank
	// holiday multiplier may apply.
	require.NoError(t, catalog.CreateBankHoliday(ctx, &ratecarddomain.BankHoliday{
		Name: "Boxing Day",
		Date: time.Date(2026, time.December, 26, 0, 0, 0, 0, time.UTC),
	}))
	result, err = svc.Compute(ctx, ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.December, 26, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, ratecarddomain.MultiplierBankHoliday, result.Applied[0].Name)
	assert.True(t, result.FinalPayRate.Equal(dec(t, "36")))
}

func TestComputeOvernightShift(t *testing.T) {
	svc, _, _ := setupCalc(t)

	result, err := svc.Compute(context.Background(), ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), // Monday
		StartTime: "22:00",
		EndTime:   "06:00",
	})
	require.NoError(t, err)

	assert.True(t, result.DurationHours.Equal(dec(t, "8")), "got %s", result.DurationHours)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, ratecarddomain.MultiplierNightShift, result.Applied[0].Name)
	assert.True(t, result.FinalPayRate.Equal(dec(t, "23.4")), "got %s", result.FinalPayRate)
}

func TestComputeOvertimeStacksOnCalendarMultiplier(t *testing.T) {
	svc, _, _ := setupCalc(t)

	result, err := svc.Compute(context.Background(), ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00",
		EndTime:   "20:00",
	})
	require.NoError(t, err)

	assert.True(t, result.DurationHours.Equal(dec(t, "12")))
	require.Len(t, result.Applied, 2)
	assert.Equal(t, ratecarddomain.MultiplierBankHoliday, result.Applied[0].Name)
	assert.Equal(t, ratecarddomain.MultiplierOvertime, result.Applied[1].Name)
	assert.True(t, result.FinalPayRate.Equal(dec(t, "54")), "got %s", result.FinalPayRate)
	assert.True(t, result.TotalPayCost.Equal(dec(t, "648")), "got %s", result.TotalPayCost)
}

func TestComputeDeterministic(t *testing.T) {
	svc, _, _ := setupCalc(t)
	ctx := context.Background()

	input := ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC), // Saturday
		StartTime: "22:00",
		EndTime:   "08:00",
	}

	first, err := svc.Compute(ctx, input)
	require.NoError(t, err)
	second, err := svc.Compute(ctx, input)
	require.NoError(t, err)

	assert.True(t, first.FinalPayRate.Equal(second.FinalPayRate))
	assert.True(t, first.TotalBillCost.Equal(second.TotalBillCost))
	assert.Equal(t, len(first.Applied), len(second.Applied))
}

func TestComputeRejectsEqualTimes(t *testing.T) {
	svc, _, _ := setupCalc(t)

	_, err := svc.Compute(context.Background(), ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "09:00",
	})
	assert.ErrorIs(t, err, ratecalcdomain.ErrInvalidShiftTime)
}

func TestComputeUnknownRole(t *testing.T) {
	svc, _, _ := setupCalc(t)

	_, err := svc.Compute(context.Background(), ratecalcdomain.ShiftInput{
		Role:      "Astronaut",
		Date:      time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	assert.ErrorIs(t, err, ratecalcdomain.ErrUnknownRole)
}

func TestComputeAndLogAppendsAuditRows(t *testing.T) {
	svc, _, conn := setupCalc(t)
	ctx := context.Background()

	input := ratecalcdomain.ShiftInput{
		Role:      "Agency Nurse",
		Date:      time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	_, err := svc.ComputeAndLog(ctx, input)
	require.NoError(t, err)
	_, err = svc.ComputeAndLog(ctx, input)
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&ratecalcdomain.RateCalculationLog{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var entry ratecalcdomain.RateCalculationLog
	require.NoError(t, conn.Order("id asc").First(&entry).Error)
	assert.Equal(t, "Agency Nurse", entry.Role)
	assert.True(t, entry.ShiftDurationHours.Equal(dec(t, "8")))
}
