package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryModel is the GORM model backing the Gorm store.
type EntryModel struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName sets the table name for GORM.
func (EntryModel) TableName() string { return "kv_entries" }

// Gorm stores entries in a relational table through GORM (SQLite or PostgreSQL).
type Gorm struct {
	db *gorm.DB
}

// NewGorm creates a Gorm store. The kv_entries table must exist (see Migrate).
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates or updates the kv_entries table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	var m EntryModel
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Value, true, nil
}

// Set inserts or overwrites the value stored under key.
func (s *Gorm) Set(ctx context.Context, key, value string) error {
	m := EntryModel{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Gorm) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&EntryModel{}).Error
}

// Ping checks the underlying database connection.
func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
