package config

import (
	"github.com/settingskit/settingskit/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Log       logger.Log
	Store     Store
	Webserver Webserver
	Settings  []Setting `toml:"setting" validate:"dive"`
}

// Webserver implements the settings API webserver settings.
type Webserver struct {
	Port         int    // listening port for the webserver
	URL          string // base url for the webserver
	ShutDownTime int    // wait time for shutdown in seconds
}

// Store selects and configures the settings store backend.
type Store struct {
	// Driver is one of memory, sqlite, mysql, postgres, fiber-mysql, fiber-postgres.
	Driver string `validate:"required,oneof=memory sqlite mysql postgres fiber-mysql fiber-postgres"`
	// Name scopes every key to a named sub-store, empty for the root store.
	Name string
	// Path is the sqlite database file.
	Path string `validate:"required_if=Driver sqlite"`
	// Table used by the fiber-* drivers.
	Table string
	DB    DB
}

// Setting declares one application setting.
type Setting struct {
	Key      string   `toml:"key"      validate:"required,max=255"`
	Kind     string   `toml:"kind"     validate:"required,oneof=string integer double float bool blob uri enumInt enumString"` //nolint:lll
	Default  string   `toml:"default"`
	Cases    []string `toml:"cases"`
	Fallback string   `toml:"fallback" validate:"omitempty,oneof=kind default zero"`
}
