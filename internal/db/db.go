package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"casino_platform/internal/account"
	"casino_platform/internal/audit"
	"casino_platform/internal/bet"
	"casino_platform/internal/bonus"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
)

// Open connects to postgres. Error translation is enabled so unique-index
// violations surface as gorm.ErrDuplicatedKey, which the claim path relies on.
func Open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// OpenSQLite opens an embedded database, used for local development and
// tests. SQLite serializes writers, so the connection pool is capped at one
// connection to avoid write-lock contention.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

// Migrate creates or updates the platform's tables.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&account.Account{},
		&ledger.Entry{},
		&game.Game{},
		&bonus.Offer{},
		&bonus.Claim{},
		&bonus.WagerEvent{},
		&bet.Bet{},
		&audit.Log{},
	)
}
