// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"dietguide_backend/internal/platform/config"
	"dietguide_backend/internal/platform/db"
	"dietguide_backend/internal/platform/kvstore"
	infraredis "dietguide_backend/internal/platform/redis"
)

// Store はセッションアダプタが使うキーバリューストアです。ヘルスチェック用にPingも備えます。
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

var (
	_ Store = (*kvstore.Memory)(nil)
	_ Store = (*kvstore.Gorm)(nil)
	_ Store = (*kvstore.Redis)(nil)
)

// NewStore はSTORE_DRIVERに応じたストアを生成します。
// 返されるclose関数は接続を閉じます（不要な場合も呼び出して構いません）。
func NewStore(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return kvstore.NewMemory(), noop, nil
	case config.DriverSQLite, config.DriverPostgres:
		gdb, err := db.OpenDB(db.Config{Driver: cfg.StoreDriver, SQLitePath: cfg.SQLitePath, DSN: cfg.DBDSN})
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return kvstore.NewGorm(gdb), sqlDB.Close, nil
	case config.DriverRedis:
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password)
		if err != nil {
			return nil, noop, err
		}
		return kvstore.NewRedis(rdb, "dietguide"), rdb.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
