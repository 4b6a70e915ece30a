package daemon_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/daemon"
	"github.com/settingskit/settingskit/store"
)

func readConfig(t *testing.T) config.Config {
	t.Helper()

	cfg, err := config.ReadConfig("../../etc/")
	require.NoError(t, err)

	cfg.Log.EnableAccessLogToConsole = false

	return cfg
}

func TestOpenBackend(t *testing.T) {
	cfg := readConfig(t)

	cfg.Store.Driver = "memory"
	b, err := daemon.OpenBackend(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, b)
	require.NoError(t, b.Close())

	cfg.Store.Driver = "redis"
	_, err = daemon.OpenBackend(&cfg)
	require.ErrorIs(t, err, daemon.ErrUnknownDriver)
}

func TestNewOnSQLite(t *testing.T) {
	previous := store.Standard()
	t.Cleanup(func() {
		store.SetStandard(previous)
	})

	cfg := readConfig(t)
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = filepath.Join(t.TempDir(), "settings.db")
	cfg.Store.Name = "app"

	d, err := daemon.New(&cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = d.Store().Close()
	})

	assert.Same(t, d.Store(), store.Standard())
	assert.Equal(t, "app", d.Store().Name())

	_, ok := d.Registry().Lookup("userName")
	assert.True(t, ok)
}

func TestNewRejectsBadSchema(t *testing.T) {
	cfg := readConfig(t)
	cfg.Store.Driver = "memory"
	cfg.Settings = append(cfg.Settings, config.Setting{Key: "userName", Kind: "string"})

	_, err := daemon.New(&cfg)
	require.Error(t, err)

	_, err = daemon.New(nil)
	require.Error(t, err)
}
