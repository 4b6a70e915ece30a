// Package fiberstore persists store values in a gofiber storage driver.
//
// gofiber storages cannot enumerate their keys, so the backend keeps the key
// set in a reserved index entry next to the values.
package fiberstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	pkgerrors "github.com/pkg/errors"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/db/dsn"
	"github.com/settingskit/settingskit/store"
)

const (
	// IndexKey holds the JSON encoded key set.
	IndexKey = "__settingskit_keys__"

	defaultTable      = "settingskit_storage"
	defaultGCInterval = 10 * time.Second
)

var (
	// ErrReservedKey is returned when writing the index key directly.
	ErrReservedKey = errors.New("key is reserved")
	// ErrUnsupportedDriver is returned by Open for a driver it does not handle.
	ErrUnsupportedDriver = errors.New("unsupported fiber storage driver")
)

// Storage is the subset of the gofiber storage interface the backend uses.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Reset() error
	Close() error
}

// Backend implements store.Backend on a gofiber Storage.
type Backend struct {
	storage Storage

	// mu guards the index entry and closed.
	mu     sync.Mutex
	closed bool
}

// New returns a backend over storage.
func New(storage Storage) *Backend {
	if storage == nil {
		panic("fiberstore: storage is nil")
	}

	return &Backend{storage: storage}
}

// Open builds the gofiber mysql or postgres storage for cfg. The storage
// drivers panic when the database is unreachable.
func Open(cfg *config.Store) (*Backend, error) {
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}

	switch cfg.Driver {
	case "fiber-mysql":
		return New(mysql.New(mysql.Config{
			Host:       cfg.DB.Host,
			Port:       cfg.DB.Port,
			Username:   cfg.DB.User,
			Password:   cfg.DB.Password,
			Database:   cfg.DB.Name,
			Table:      table,
			GCInterval: defaultGCInterval,
		})), nil
	case "fiber-postgres":
		return New(postgres.New(postgres.Config{
			ConnectionURI: dsn.Postgres(&cfg.DB),
			Table:         table,
			GCInterval:    defaultGCInterval,
		})), nil
	default:
		return nil, pkgerrors.Wrap(ErrUnsupportedDriver, cfg.Driver)
	}
}

// Get implements store.Backend. An empty payload is reported as absent,
// as gofiber storages return no value for a missing key.
func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == IndexKey {
		return nil, false, nil
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return nil, false, store.ErrBackendClosed
	}

	val, err := b.storage.Get(key)
	if err != nil {
		return nil, false, err
	}

	return val, len(val) > 0, nil
}

// Set implements store.Backend.
func (b *Backend) Set(_ context.Context, key string, payload []byte) error {
	switch key {
	case "":
		return store.ErrEmptyKey
	case IndexKey:
		return ErrReservedKey
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return store.ErrBackendClosed
	}

	if err := b.storage.Set(key, payload, 0); err != nil {
		return err
	}

	return b.updateIndex(func(keys map[string]struct{}) bool {
		if _, ok := keys[key]; ok {
			return false
		}

		keys[key] = struct{}{}

		return true
	})
}

// Delete implements store.Backend.
func (b *Backend) Delete(_ context.Context, key string) error {
	if key == "" || key == IndexKey {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return store.ErrBackendClosed
	}

	if err := b.storage.Delete(key); err != nil {
		return err
	}

	return b.updateIndex(func(keys map[string]struct{}) bool {
		if _, ok := keys[key]; !ok {
			return false
		}

		delete(keys, key)

		return true
	})
}

// Keys implements store.Backend.
func (b *Backend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, store.ErrBackendClosed
	}

	keys, err := b.readIndex()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}

	sort.Strings(out)

	return out, nil
}

// Reset removes every entry from the underlying storage.
func (b *Backend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return store.ErrBackendClosed
	}

	return b.storage.Reset()
}

// Close implements store.Backend. Closing twice is a no-op.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	return b.storage.Close()
}

// readIndex must be called with mu held.
func (b *Backend) readIndex() (map[string]struct{}, error) {
	raw, err := b.storage.Get(IndexKey)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	if len(raw) == 0 {
		return keys, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, pkgerrors.Wrap(store.ErrMalformedPayload, "key index")
	}

	for _, k := range list {
		keys[k] = struct{}{}
	}

	return keys, nil
}

// updateIndex applies change to the index and writes it back when change
// reports a modification. It must be called with mu held.
func (b *Backend) updateIndex(change func(map[string]struct{}) bool) error {
	keys, err := b.readIndex()
	if err != nil {
		return err
	}

	if !change(keys) {
		return nil
	}

	list := make([]string, 0, len(keys))
	for k := range keys {
		list = append(list, k)
	}

	sort.Strings(list)

	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}

	return b.storage.Set(IndexKey, raw, 0)
}
