// Package sqlite stores catalog blobs in an on-device SQLite file through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name shared with the PostgreSQL store.
func (Entry) TableName() string {
	return "kv_entries"
}

// Store implements kvstore.Store and kvstore.Batcher on a gorm connection.
type Store struct {
	db *gorm.DB
}

// Open opens the SQLite database at path (":memory:" for a private in-memory
// database) and migrates the kv_entries table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// one connection: SQLite has a single writer and ":memory:" is per connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}

	slog.Info("sqlite store opened", slog.String("path", path))
	return New(db), nil
}

// New wraps an already migrated gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return get(s.db.WithContext(ctx), key)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return set(s.db.WithContext(ctx), key, value)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return remove(s.db.WithContext(ctx), key)
}

// Apply runs every op inside one gorm transaction.
func (s *Store) Apply(ctx context.Context, ops ...kvstore.Op) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			var err error
			if op.Delete {
				err = remove(tx, op.Key)
			} else {
				err = set(tx, op.Key, op.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("error applying batch", slog.Any("err", err))
		return fmt.Errorf("failed to apply batch: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func get(db *gorm.DB, key string) (string, error) {
	var entry Entry
	err := db.Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", kvstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find key %s: %w", key, err)
	}
	return entry.Value, nil
}

func set(db *gorm.DB, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert key %s: %w", key, err)
	}
	return nil
}

func remove(db *gorm.DB, key string) error {
	if err := db.Where("key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
