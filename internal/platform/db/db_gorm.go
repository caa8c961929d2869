// Package db はGORMによるデータベース接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dietguide_backend/internal/platform/kvstore"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// connectTimeout はPostgreSQLの起動待ちを含む接続リトライの上限です。
	connectTimeout = 60 * time.Second
)

// retryInterval は接続リトライの間隔です（テストで短縮できるよう変数にしています）。
var retryInterval = 3 * time.Second

// Opener はDSNからgorm.DBを開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// Config はデータベース接続設定です。
type Config struct {
	Driver     string // sqlite | postgres
	SQLitePath string
	DSN        string
}

// OpenDB はドライバに応じてデータベースを開き、kv_entriesテーブルをマイグレーションします。
func OpenDB(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %s: %w", cfg.SQLitePath, err)
		}
		slog.Info("using sqlite", "path", cfg.SQLitePath)
	case DriverPostgres:
		db, err = ConnectWithRetry(cfg.DSN, connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		})
		if err != nil {
			return nil, err
		}
		slog.Info("using postgres")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := kvstore.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

// ConnectWithRetry はtimeoutに達するまでretryInterval間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}
