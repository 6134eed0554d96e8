package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/clock"
	"github.com/kofiy77/joyjoy-Locums/internal/config"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	shiftdomain "github.com/kofiy77/joyjoy-Locums/internal/shift/domain"
)

func setupPeriodService(t *testing.T, now time.Time, frequency string) (billingperioddomain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&billingperioddomain.BillingPeriod{},
		&shiftdomain.Shift{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(now)
	holder := config.NewStaticBillingConfigHolder(config.BillingConfig{
		BillingFrequency:       frequency,
		OvertimeThresholdHours: 10,
		RoundToQuarterHour:     true,
		DefaultRegion:          "england-and-wales",
	})

	svc := NewService(ServiceParam{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		BillingCfg: holder,
	})
	return svc, conn, node, fake
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsInvalidRange(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t, day(2026, time.January, 7), "weekly")

	_, err := svc.Create(context.Background(), billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 12),
		PeriodEnd:   day(2026, time.January, 12),
	})
	assert.ErrorIs(t, err, billingperioddomain.ErrInvalidPeriod)
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t, day(2026, time.January, 7), "weekly")
	ctx := context.Background()

	_, err := svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 5),
		PeriodEnd:   day(2026, time.January, 12),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 9),
		PeriodEnd:   day(2026, time.January, 16),
	})
	assert.ErrorIs(t, err, billingperioddomain.ErrOverlappingPeriod)

	// Half-open windows: a period starting exactly at the previous end is fine.
	_, err = svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 12),
		PeriodEnd:   day(2026, time.January, 19),
	})
	assert.NoError(t, err)
}

func TestEnsureCurrentPeriodWeeklyAlignsToMonday(t *testing.T) {
	// Wednesday 2026-01-07.
	svc, _, _, _ := setupPeriodService(t, day(2026, time.January, 7), "weekly")
	ctx := context.Background()

	period, err := svc.EnsureCurrentPeriod(ctx)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.True(t, period.PeriodStart.Equal(day(2026, time.January, 5)))
	assert.True(t, period.PeriodEnd.Equal(day(2026, time.January, 12)))
	assert.Equal(t, "5 Jan 2026 to 11 Jan 2026", period.PeriodName)
	assert.Equal(t, billingperioddomain.BillingPeriodStatusOpen, period.Status)

	again, err := svc.EnsureCurrentPeriod(ctx)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, period.ID, again.ID)
}

func TestEnsureCurrentPeriodMonthly(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t, day(2026, time.March, 15), "monthly")

	period, err := svc.EnsureCurrentPeriod(context.Background())
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.True(t, period.PeriodStart.Equal(day(2026, time.March, 1)))
	assert.True(t, period.PeriodEnd.Equal(day(2026, time.April, 1)))
}

func TestEnsureCurrentPeriodContinuesFromLastBoundary(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t, day(2026, time.January, 8), "weekly")
	ctx := context.Background()

	// Manually created period ends mid-week on Wednesday.
	_, err := svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 1),
		PeriodEnd:   day(2026, time.January, 7),
	})
	require.NoError(t, err)

	period, err := svc.EnsureCurrentPeriod(ctx)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.True(t, period.PeriodStart.Equal(day(2026, time.January, 7)))
	assert.True(t, period.PeriodEnd.Equal(day(2026, time.January, 12)))
}

func TestFindForDate(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t, day(2026, time.January, 7), "weekly")
	ctx := context.Background()

	created, err := svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 5),
		PeriodEnd:   day(2026, time.January, 12),
	})
	require.NoError(t, err)

	found, err := svc.FindForDate(ctx, day(2026, time.January, 9))
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// The end boundary is exclusive.
	_, err = svc.FindForDate(ctx, day(2026, time.January, 12))
	assert.ErrorIs(t, err, billingperioddomain.ErrPeriodNotFound)
}

func TestCloseRefusesUnbilledShifts(t *testing.T) {
	svc, conn, node, _ := setupPeriodService(t, day(2026, time.January, 14), "weekly")
	ctx := context.Background()

	period, err := svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 5),
		PeriodEnd:   day(2026, time.January, 12),
	})
	require.NoError(t, err)

	shift := shiftdomain.Shift{
		ID:         node.Generate(),
		ShiftRef:   "SH-1001",
		PracticeID: node.Generate(),
		Role:       "Agency Nurse",
		Date:       day(2026, time.January, 6),
		StartTime:  "09:00",
		EndTime:    "17:00",
		Status:     shiftdomain.ShiftStatusCompleted,
	}
	require.NoError(t, conn.Create(&shift).Error)

	_, err = svc.Close(ctx, period.ID, "ops@joyjoylocums.co.uk")
	assert.ErrorIs(t, err, billingperioddomain.ErrUnbilledShifts)

	// Bill the shift; the period can then close.
	invoice := invoicedomain.Invoice{
		ID:              node.Generate(),
		InvoiceNumber:   "JJC-1000",
		InvoiceType:     invoicedomain.InvoiceTypeClient,
		BillingPeriodID: period.ID,
		RecipientID:     shift.PracticeID,
		RecipientName:   "Oakfield Surgery",
		Status:          invoicedomain.InvoiceStatusDraft,
		IssuedAt:        day(2026, time.January, 13),
		DueAt:           day(2026, time.February, 12),
	}
	require.NoError(t, conn.Create(&invoice).Error)
	require.NoError(t, conn.Create(&invoicedomain.InvoiceLineItem{
		ID:        node.Generate(),
		InvoiceID: invoice.ID,
		ShiftID:   shift.ID,
		ShiftDate: shift.Date,
		Role:      shift.Role,
	}).Error)

	closed, err := svc.Close(ctx, period.ID, "ops@joyjoylocums.co.uk")
	require.NoError(t, err)
	assert.Equal(t, billingperioddomain.BillingPeriodStatusClosed, closed.Status)
	assert.Equal(t, "ops@joyjoylocums.co.uk", closed.ClosedBy)
	require.NotNil(t, closed.ClosedAt)

	_, err = svc.Close(ctx, period.ID, "ops@joyjoylocums.co.uk")
	assert.ErrorIs(t, err, billingperioddomain.ErrPeriodClosed)
}

func TestCloseCancelledInvoiceDoesNotCountAsBilled(t *testing.T) {
	svc, conn, node, _ := setupPeriodService(t, day(2026, time.January, 14), "weekly")
	ctx := context.Background()

	period, err := svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
		PeriodStart: day(2026, time.January, 5),
		PeriodEnd:   day(2026, time.January, 12),
	})
	require.NoError(t, err)

	shift := shiftdomain.Shift{
		ID:         node.Generate(),
		ShiftRef:   "SH-2002",
		PracticeID: node.Generate(),
		Role:       "Agency Nurse",
		Date:       day(2026, time.January, 6),
		StartTime:  "09:00",
		EndTime:    "17:00",
		Status:     shiftdomain.ShiftStatusCompleted,
	}
	require.NoError(t, conn.Create(&shift).Error)

	invoice := invoicedomain.Invoice{
		ID:              node.Generate(),
		InvoiceNumber:   "JJC-1001",
		InvoiceType:     invoicedomain.InvoiceTypeClient,
		BillingPeriodID: period.ID,
		RecipientID:     shift.PracticeID,
		RecipientName:   "Oakfield Surgery",
		Status:          invoicedomain.InvoiceStatusCancelled,
		IssuedAt:        day(2026, time.January, 13),
		DueAt:           day(2026, time.February, 12),
	}
	require.NoError(t, conn.Create(&invoice).Error)
	require.NoError(t, conn.Create(&invoicedomain.InvoiceLineItem{
		ID:        node.Generate(),
		InvoiceID: invoice.ID,
		ShiftID:   shift.ID,
		ShiftDate: shift.Date,
		Role:      shift.Role,
	}).Error)

	_, err = svc.Close(ctx, period.ID, "ops@joyjoylocums.co.uk")
	assert.ErrorIs(t, err, billingperioddomain.ErrUnbilledShifts)
}

func TestListPaginates(t *testing.T) {
	svc, _, _, _ := setupPeriodService(t, day(2026, time.June, 1), "weekly")
	ctx := context.Background()

	start := day(2026, time.January, 5)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, billingperioddomain.CreateBillingPeriodRequest{
			PeriodStart: start.AddDate(0, 0, i*7),
			PeriodEnd:   start.AddDate(0, 0, (i+1)*7),
		})
		require.NoError(t, err)
	}

	req := billingperioddomain.ListBillingPeriodRequest{}
	req.PageSize = 2
	page, err := svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, page.BillingPeriods, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextPageToken)

	req.PageToken = page.NextPageToken
	rest, err := svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, rest.BillingPeriods, 1)
	assert.False(t, rest.HasMore)
}
