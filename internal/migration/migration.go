// Package migration applies the database schema on startup. Postgres runs
// the embedded SQL migrations; other dialects fall back to AutoMigrate.
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	practicedomain "github.com/kofiy77/joyjoy-Locums/internal/practice/domain"
	ratecalcdomain "github.com/kofiy77/joyjoy-Locums/internal/ratecalc/domain"
	ratecarddomain "github.com/kofiy77/joyjoy-Locums/internal/ratecard/domain"
	shiftdomain "github.com/kofiy77/joyjoy-Locums/internal/shift/domain"
	staffdomain "github.com/kofiy77/joyjoy-Locums/internal/staff/domain"
)

// RunMigrations brings the schema up to date for the given connection.
func RunMigrations(conn *gorm.DB) error {
	if conn.Dialector.Name() != "postgres" {
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	source, err := iofs.New(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}

	// Do not Close the migrator: it would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// AutoMigrate creates the schema from the models. Used for sqlite and tests.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&ratecarddomain.RoleBaseRate{},
		&ratecarddomain.RateMultiplier{},
		&ratecarddomain.BankHoliday{},
		&ratecarddomain.ShiftTimeWindow{},
		&ratecalcdomain.RateCalculationLog{},
		&practicedomain.Practice{},
		&staffdomain.StaffMember{},
		&shiftdomain.Shift{},
		&shiftdomain.Timesheet{},
		&billingperioddomain.BillingPeriod{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
		&invoicedomain.InvoiceSettings{},
	)
}
