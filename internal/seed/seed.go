// Package seed installs the default UK rate catalog and invoice settings so a
// fresh install can price shifts and generate invoices without manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// EnsureDefaults inserts any missing catalog rows and the invoice settings
// singleton. Existing rows are never modified, so operator edits survive
// restarts.
func EnsureDefaults(ctx context.Context, conn *gorm.DB, node *snowflake.Node) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureRoleBaseRates(tx, node); err != nil {
			return err
		}
		if err := ensureMultipliers(tx, node); err != nil {
			return err
		}
		if err := ensureBankHolidays(tx, node); err != nil {
			return err
		}
		if err := ensureShiftTimeWindows(tx, node); err != nil {
			return err
		}
		return ensureInvoiceSettings(tx)
	})
}

func ensureRoleBaseRates(tx *gorm.DB, node *snowflake.Node) error {
	rates := []ratecarddomain.RoleBaseRate{
		{
			Role:              "Healthcare Assistant",
			WorkerPayRateMin:  dec("12.00"),
			WorkerPayRateMax:  dec("14.50"),
			ClientBillRateMin: dec("16.00"),
			ClientBillRateMax: dec("20.00"),
			AgencyMarkupMin:   decPtr("25.00"),
			AgencyMarkupMax:   decPtr("38.00"),
		},
		{
			Role:              "Support Worker",
			WorkerPayRateMin:  dec("12.50"),
			WorkerPayRateMax:  dec("15.00"),
			ClientBillRateMin: dec("17.00"),
			ClientBillRateMax: dec("21.00"),
		},
		{
			Role:              "Agency Nurse",
			WorkerPayRateMin:  dec("18.00"),
			WorkerPayRateMax:  dec("25.00"),
			ClientBillRateMin: dec("28.00"),
			ClientBillRateMax: dec("38.00"),
			Notes:             strPtr("RGN / RMN, NMC registered"),
		},
		{
			Role:              "Nurse Practitioner",
			WorkerPayRateMin:  dec("26.00"),
			WorkerPayRateMax:  dec("32.00"),
			ClientBillRateMin: dec("38.00"),
			ClientBillRateMax: dec("48.00"),
		},
		{
			Role:              "GP Locum",
			WorkerPayRateMin:  dec("75.00"),
			WorkerPayRateMax:  dec("95.00"),
			ClientBillRateMin: dec("95.00"),
			ClientBillRateMax: dec("120.00"),
			Notes:             strPtr("Sessional rates agreed per practice"),
		},
	}

	for _, rate := range rates {
		var existing ratecarddomain.RoleBaseRate
		err := tx.First(&existing, "role = ?", rate.Role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		rate.ID = node.Generate()
		rate.IsActive = true
		if err := tx.Create(&rate).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureMultipliers(tx *gorm.DB, node *snowflake.Node) error {
	multipliers := []ratecarddomain.RateMultiplier{
		{
			Name:        ratecarddomain.MultiplierBankHoliday,
			Description: "Shift falls on a bank holiday",
			Multiplier:  dec("2.0"),
			Priority:    10,
		},
		{
			Name:        ratecarddomain.MultiplierWeekend,
			Description: "Shift falls on a Saturday or Sunday",
			Multiplier:  dec("1.5"),
			Priority:    5,
		},
		{
			Name:        ratecarddomain.MultiplierNightShift,
			Description: "Shift classified as a night shift",
			Multiplier:  dec("1.3"),
			Priority:    3,
		},
		{
			Name:        ratecarddomain.MultiplierOvertime,
			Description: "Hours beyond the overtime threshold",
			Multiplier:  dec("1.5"),
			Priority:    1,
		},
	}

	for _, multiplier := range multipliers {
		var existing ratecarddomain.RateMultiplier
		err := tx.First(&existing, "name = ?", multiplier.Name).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		multiplier.ID = node.Generate()
		multiplier.IsActive = true
		if err := tx.Create(&multiplier).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureBankHolidays(tx *gorm.DB, node *snowflake.Node) error {
	holidays := []ratecarddomain.BankHoliday{
		{
			Name:             "New Year's Day",
			Date:             date(2026, time.January, 1),
			IsRecurring:      true,
			RecurringPattern: strPtr("january-1"),
		},
		{
			Name: "Good Friday",
			Date: date(2026, time.April, 3),
		},
		{
			Name: "Easter Monday",
			Date: date(2026, time.April, 6),
		},
		{
			Name:             "Early May Bank Holiday",
			Date:             date(2026, time.May, 4),
			IsRecurring:      true,
			RecurringPattern: strPtr("first-monday-may"),
		},
		{
			Name:             "Spring Bank Holiday",
			Date:             date(2026, time.May, 25),
			IsRecurring:      true,
			RecurringPattern: strPtr("last-monday-may"),
		},
		{
			Name:             "Summer Bank Holiday",
			Date:             date(2026, time.August, 31),
			IsRecurring:      true,
			RecurringPattern: strPtr("last-monday-august"),
		},
		{
			Name:             "Christmas Day",
			Date:             date(2026, time.December, 25),
			IsRecurring:      true,
			RecurringPattern: strPtr("december-25"),
		},
		{
			Name:             "Boxing Day",
			Date:             date(2026, time.December, 26),
			IsRecurring:      true,
			RecurringPattern: strPtr("december-26"),
		},
	}

	for _, holiday := range holidays {
		var existing ratecarddomain.BankHoliday
		err := tx.First(&existing, "name = ? AND date = ?", holiday.Name, holiday.Date).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		holiday.ID = node.Generate()
		holiday.Region = "england-and-wales"
		if err := tx.Create(&holiday).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureShiftTimeWindows(tx *gorm.DB, node *snowflake.Node) error {
	windows := []ratecarddomain.ShiftTimeWindow{
		{
			ShiftType:   ratecarddomain.ShiftTypeDay,
			StartTime:   "08:00",
			EndTime:     "18:00",
			Description: strPtr("Standard daytime cover"),
		},
		{
			ShiftType:   ratecarddomain.ShiftTypeEvening,
			StartTime:   "18:00",
			EndTime:     "22:00",
			Description: strPtr("Evening cover"),
		},
		{
			ShiftType:   ratecarddomain.ShiftTypeNight,
			StartTime:   "22:00",
			EndTime:     "08:00",
			Description: strPtr("Overnight cover, crosses midnight"),
		},
	}

	for _, window := range windows {
		var existing ratecarddomain.ShiftTimeWindow
		err := tx.First(&existing, "shift_type = ?", window.ShiftType).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		window.ID = node.Generate()
		window.IsActive = true
		if err := tx.Create(&window).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureInvoiceSettings(tx *gorm.DB) error {
	var existing invoicedomain.InvoiceSettings
	err := tx.First(&existing, "id = ?", invoicedomain.SettingsRowID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	settings := invoicedomain.InvoiceSettings{
		ID:                        invoicedomain.SettingsRowID,
		ClientInvoicePrefix:       "JJC-",
		PayrollInvoicePrefix:      "PYS-",
		NextClientInvoiceNumber:   1000,
		NextPayrollInvoiceNumber:  2000,
		VATRate:                   dec("20"),
		VATRegistered:             true,
		VATNumber:                 "GB123456789",
		CompanyRegistrationNumber: "09876543",
		PaymentTermsDays:          30,
	}
	return tx.Create(&settings).Error
}
