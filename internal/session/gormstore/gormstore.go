// Package gormstore keeps session values in a SQL table through gorm. The default CLI setup
// points it at a sqlite file under the user's config directory.
package gormstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fmastery/admin-console/internal/session"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type SessionEntry struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SessionEntry) TableName() string {
	return "session_entries"
}

type Backend struct {
	db     *gorm.DB
	closed atomic.Bool
}

var _ session.Backend = (*Backend)(nil)

func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Open connects with the named driver ("sqlite" or "postgres"). For sqlite the parent
// directory of source is created when missing.
func Open(driver, source string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if source != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(source), 0o700); err != nil {
				return nil, fmt.Errorf("failed to create session directory: %w", err)
			}
		}
		dialector = sqlite.Open(source)
	case "postgres":
		dialector = postgres.Open(source)
	default:
		return nil, fmt.Errorf("unsupported session driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if source == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func (b *Backend) Read(ctx context.Context, keys ...string) (map[string]string, error) {
	if b.closed.Load() {
		return nil, session.ErrBackendClosed
	}
	var entries []SessionEntry
	if err := b.db.WithContext(ctx).Where("name IN ?", keys).Find(&entries).Error; err != nil {
		return nil, err
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Value
	}
	return out, nil
}

func (b *Backend) Write(ctx context.Context, values map[string]string) error {
	if b.closed.Load() {
		return session.ErrBackendClosed
	}
	if len(values) == 0 {
		return nil
	}

	now := time.Now().UTC()
	entries := make([]SessionEntry, 0, len(values))
	for name, value := range values {
		entries = append(entries, SessionEntry{Name: name, Value: value, UpdatedAt: now})
	}

	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
	})
}

func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if b.closed.Load() {
		return session.ErrBackendClosed
	}
	if len(keys) == 0 {
		return nil
	}
	return b.db.WithContext(ctx).Where("name IN ?", keys).Delete(&SessionEntry{}).Error
}

func (b *Backend) Ping(ctx context.Context) error {
	if b.closed.Load() {
		return session.ErrBackendClosed
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool. Later calls fail with session.ErrBackendClosed.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
