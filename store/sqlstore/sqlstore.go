// Package sqlstore persists store values in a SQL table through gorm.
package sqlstore

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/db/controller/setting"
	"github.com/settingskit/settingskit/internal/db/dsn"
	"github.com/settingskit/settingskit/internal/logger"
	"github.com/settingskit/settingskit/internal/logger/adapter/gormlog"
	"github.com/settingskit/settingskit/store"
)

// ErrUnsupportedDriver is returned by Open for a driver it does not handle.
var ErrUnsupportedDriver = errors.New("unsupported sql driver")

// Backend implements store.Backend on the settings table.
type Backend struct {
	db     *gorm.DB
	closed atomic.Bool
}

// New migrates the settings table on db and returns a backend using it.
func New(db *gorm.DB) (*Backend, error) {
	if db == nil {
		return nil, setting.ErrDBNil
	}

	if err := setting.Migrate(context.Background(), db); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to migrate settings table")
	}

	return &Backend{db: db}, nil
}

// Dialector returns the gorm dialector for the sqlite, mysql or postgres
// driver of cfg.
func Dialector(cfg *config.Store) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	case "mysql":
		return mysql.Open(dsn.MySQL(&cfg.DB)), nil
	case "postgres":
		return postgres.Open(dsn.Postgres(&cfg.DB)), nil
	default:
		return nil, pkgerrors.Wrap(ErrUnsupportedDriver, cfg.Driver)
	}
}

// Open connects to the database described by cfg. gormLevel is the gorm log
// level name passed to the zerolog adapter.
func Open(cfg *config.Store, gormLevel string) (*Backend, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlog.New(logger.Component("gorm"), gormLevel),
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open %s database", cfg.Driver)
	}

	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	return New(db)
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, store.ErrBackendClosed
	}

	row, err := setting.Get(ctx, b.db, key)
	switch {
	case errors.Is(err, setting.ErrSettingNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	return row.Value, true, nil
}

// Set implements store.Backend.
func (b *Backend) Set(ctx context.Context, key string, payload []byte) error {
	if b.closed.Load() {
		return store.ErrBackendClosed
	}

	if key == "" {
		return store.ErrEmptyKey
	}

	return setting.Set(ctx, b.db, key, payload)
}

// Delete implements store.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if b.closed.Load() {
		return store.ErrBackendClosed
	}

	err := setting.DeleteByName(ctx, b.db, key)
	if errors.Is(err, setting.ErrSettingNotFound) || errors.Is(err, setting.ErrSettingNameEmpty) {
		return nil
	}

	return err
}

// Keys implements store.Backend.
func (b *Backend) Keys(ctx context.Context, prefix string) ([]string, error) {
	if b.closed.Load() {
		return nil, store.ErrBackendClosed
	}

	return setting.Names(ctx, b.db, prefix)
}

// Close implements store.Backend. It closes the underlying connection pool.
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
