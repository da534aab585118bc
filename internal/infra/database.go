package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tillpoint/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the SQL patches GORM cannot express
// (partial unique indexes guarding the one-open-session invariants).
//
// TranslateError is enabled so that unique-constraint violations surface as
// gorm.ErrDuplicatedKey — the service layer turns those into ConflictError
// instead of leaking SQLSTATE codes.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates the schema and applies the index patches. Exposed
// separately so integration setups can migrate without opening a new pool.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.CashRegister{},
		&model.CashSession{},
		&model.SessionMethodTotal{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SalePayment{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// The two partial unique indexes are the store-level guard against the
// open-session races: a concurrent second open on the same register (or by
// the same operator) fails at commit with a unique violation, no matter what
// the application-level pre-checks observed.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_open_session_register
		    ON cash_sessions (register_id)
		    WHERE status = 'OPEN'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_open_session_operator
		    ON cash_sessions (operator_id)
		    WHERE status = 'OPEN'`,
		// Movement reads at close are ordered by append time.
		`CREATE INDEX IF NOT EXISTS idx_cash_movements_session_created
		    ON cash_movements (session_id, created_at)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
