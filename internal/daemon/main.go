// Package daemon wires configuration, store and web service together.
package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/logger"
	"github.com/settingskit/settingskit/internal/schema"
	"github.com/settingskit/settingskit/internal/web"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
	"github.com/settingskit/settingskit/store/fiberstore"
	"github.com/settingskit/settingskit/store/sqlstore"
)

// ErrUnknownDriver is returned for a store driver no backend implements.
var ErrUnknownDriver = errors.New("unknown store driver")

// OpenBackend opens the store backend selected by cfg.Store.Driver.
func OpenBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite", "mysql", "postgres":
		return sqlstore.Open(&cfg.Store, cfg.Log.GormLevel)
	case "fiber-mysql", "fiber-postgres":
		return fiberstore.Open(&cfg.Store)
	default:
		return nil, errors.Wrap(ErrUnknownDriver, cfg.Store.Driver)
	}
}

// OpenStore opens the backend and the named store of cfg.
func OpenStore(cfg *config.Config) (*store.Store, error) {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}

	return store.New(backend,
		store.WithName(cfg.Store.Name),
		store.WithLogger(logger.Store(cfg.Store.Driver, cfg.Store.Name)),
	), nil
}

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	store      *store.Store
	registry   *settings.Registry
	webService *web.Service
}

// Start serves the settings API until a shutdown signal arrives, then
// closes the store.
func (d *Daemon) Start() error {
	errc := make(chan error, 1)

	go func() {
		errc <- d.webService.Start(d.webService.Addr())
	}()

	go d.webService.WaitShutdown()

	err := <-errc

	if cerr := d.store.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("failed to close store")
	}

	return err
}

// Store returns the store the daemon serves.
func (d *Daemon) Store() *store.Store { return d.store }

// Registry returns the declared settings.
func (d *Daemon) Registry() *settings.Registry { return d.registry }

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	registry, err := schema.Build(cfg.Settings)
	if err != nil {
		return nil, errors.Wrap(err, "invalid settings schema")
	}

	st, err := OpenStore(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open store")
	}

	// the typed bindings of the process default to this store
	store.SetStandard(st)

	log.Info().
		Str("driver", cfg.Store.Driver).
		Int("settings", len(registry.Definitions())).
		Msg("settings store opened")

	return &Daemon{
		cfg:        cfg,
		store:      st,
		registry:   registry,
		webService: web.New(cfg, st, registry),
	}, nil
}
