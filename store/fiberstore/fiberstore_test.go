package fiberstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/store"
	"github.com/settingskit/settingskit/store/fiberstore"
)

// mapStorage behaves like a gofiber storage driver.
type mapStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	closed  int
}

func newMapStorage() *mapStorage {
	return &mapStorage{data: make(map[string][]byte)}
}

var errStorage = errors.New("storage down")

func (m *mapStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet {
		return nil, errStorage
	}

	return m.data[key], nil
}

func (m *mapStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key == "" || len(val) == 0 {
		return nil
	}

	m.data[key] = val

	return nil
}

func (m *mapStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *mapStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)

	return nil
}

func (m *mapStorage) Close() error {
	m.closed++

	return nil
}

func TestBackendTracksKeys(t *testing.T) {
	ctx := context.Background()
	b := fiberstore.New(newMapStorage())

	require.NoError(t, b.Set(ctx, "ui.theme", []byte("dark")))
	require.NoError(t, b.Set(ctx, "ui.font", []byte("mono")))
	require.NoError(t, b.Set(ctx, "ui.theme", []byte("light")))
	require.NoError(t, b.Set(ctx, "count", []byte("1")))

	keys, err := b.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "ui.font", "ui.theme"}, keys)

	keys, err = b.Keys(ctx, "ui.")
	require.NoError(t, err)
	assert.Equal(t, []string{"ui.font", "ui.theme"}, keys)

	payload, ok, err := b.Get(ctx, "ui.theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("light"), payload)

	require.NoError(t, b.Delete(ctx, "ui.theme"))
	require.NoError(t, b.Delete(ctx, "missing"))

	_, ok, err = b.Get(ctx, "ui.theme")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err = b.Keys(ctx, "ui.")
	require.NoError(t, err)
	assert.Equal(t, []string{"ui.font"}, keys)
}

func TestIndexSurvivesNewBackend(t *testing.T) {
	ctx := context.Background()
	storage := newMapStorage()

	require.NoError(t, fiberstore.New(storage).Set(ctx, "a", []byte("1")))

	keys, err := fiberstore.New(storage).Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestReservedAndEmptyKeys(t *testing.T) {
	ctx := context.Background()
	b := fiberstore.New(newMapStorage())

	require.ErrorIs(t, b.Set(ctx, fiberstore.IndexKey, []byte("x")), fiberstore.ErrReservedKey)
	require.ErrorIs(t, b.Set(ctx, "", []byte("x")), store.ErrEmptyKey)

	require.NoError(t, b.Set(ctx, "a", []byte("1")))

	_, ok, err := b.Get(ctx, fiberstore.IndexKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Delete(ctx, fiberstore.IndexKey))

	keys, err := b.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestMalformedIndex(t *testing.T) {
	storage := newMapStorage()
	storage.data[fiberstore.IndexKey] = []byte("not json")

	_, err := fiberstore.New(storage).Keys(context.Background(), "")
	require.ErrorIs(t, err, store.ErrMalformedPayload)
}

func TestStorageErrors(t *testing.T) {
	storage := newMapStorage()
	storage.failGet = true

	b := fiberstore.New(storage)

	_, _, err := b.Get(context.Background(), "k")
	require.ErrorIs(t, err, errStorage)

	// the Store facade reports failed reads as absence
	s := store.New(b)
	assert.False(t, s.Contains("k"))
}

func TestResetAndClose(t *testing.T) {
	ctx := context.Background()
	storage := newMapStorage()
	b := fiberstore.New(storage)

	require.NoError(t, b.Set(ctx, "a", []byte("1")))
	require.NoError(t, b.Reset())

	keys, err := b.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, 1, storage.closed)

	_, _, err = b.Get(ctx, "a")
	require.ErrorIs(t, err, store.ErrBackendClosed)
	require.ErrorIs(t, b.Set(ctx, "a", []byte("1")), store.ErrBackendClosed)
	require.ErrorIs(t, b.Reset(), store.ErrBackendClosed)
}

func TestOpenRejectsOtherDrivers(t *testing.T) {
	_, err := fiberstore.Open(&config.Store{Driver: "sqlite"})
	require.ErrorIs(t, err, fiberstore.ErrUnsupportedDriver)
}

func TestNewRequiresStorage(t *testing.T) {
	assert.Panics(t, func() {
		fiberstore.New(nil)
	})
}
