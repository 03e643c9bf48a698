package infra

import (
	"fmt"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

// RunMigrations creates/updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Item{},
		&model.Slip{},
		&model.ProductLine{},
		&model.IncomeRecord{},
		&model.IncomeProduct{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Safe to re-run on an already-patched database.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Per-day slip numbers draw from this sequence inside the creation
		// transaction, so concurrent creates never collide.
		{"create slip number sequence",
			`CREATE SEQUENCE IF NOT EXISTS slips_slip_number_seq START 1`},

		// The reporting reads filter on active income constantly; a partial
		// index keeps them cheap as cancelled history accumulates.
		{"create active income partial index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_income_records_active_date') THEN
    CREATE INDEX idx_income_records_active_date
        ON income_records (date)
        WHERE is_active = true;
  END IF;
END $$`},

		// Low-stock listing scans active items by quantity vs min level.
		{"create low stock index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_items_low_stock') THEN
    CREATE INDEX idx_items_low_stock
        ON items (quantity)
        WHERE is_active IS DISTINCT FROM false;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
