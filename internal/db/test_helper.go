package db

import (
	"testing"

	"coin_exchange/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema
// migrated. The connection pool is capped at one connection, so concurrent
// transactions in tests serialize exactly like row locks would in MySQL
// while the calling goroutines stay fully concurrent.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A single connection keeps the in-memory database alive and makes
	// transactions queue instead of failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.Wallet{},
		&domain.Coin{},
		&domain.CoinHolding{},
		&domain.Trade{},
		&domain.Transaction{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}
