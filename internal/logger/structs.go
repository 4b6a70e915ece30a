package logger

import (
	"errors"
	"io"
	"path"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// ErrAppNameIsEmpty is returned by Init when Log.AppName is empty.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned by Init when Log.ServiceName is empty.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// ErrUnknownLevel is returned by Init for a LogLevel zerolog does not know.
	ErrUnknownLevel = errors.New("log level is not supported")
)

// Console configures logging to stdout and stderr.
type Console struct {
	Enabled bool `toml:"enabled"`
	// UseConsoleWriter renders human readable lines instead of JSON.
	UseConsoleWriter bool
}

// Rotation bounds a rolling log file. Zero values use the lumberjack defaults.
type Rotation struct {
	MaxSize    int `toml:"maxSize"` // megabytes
	MaxBackups int `toml:"maxBackups"`
	MaxAge     int `toml:"maxAge"` // days
}

// LogFile configures the rolling log files written under Path: one per
// level group and one for the settings API access log.
type LogFile struct {
	Enabled  bool     `toml:"enabled"`
	Path     string   `toml:"path"`
	Rotation Rotation `toml:"rotation"`

	AccessLog string `toml:"access"`
	ErrorLog  string `toml:"error"`
	InfoLog   string `toml:"info"`
	TraceLog  string `toml:"trace"`
	WarnLog   string `toml:"warn"`
}

// Rolling returns the rotated file name under the log directory.
func (f LogFile) Rolling(name string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(f.Path, name),
		MaxSize:    f.Rotation.MaxSize,
		MaxAge:     f.Rotation.MaxAge,
		MaxBackups: f.Rotation.MaxBackups,
	}
}

// Log is the logging section of the settingskit configuration.
type Log struct {
	LogLevel string // trace, debug, info, warn, error
	LogEnv   string

	// EnableAccessLogToConsole writes the settings API access log to the
	// console too. It has no effect while Console.Enabled is false.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	// GormLevel is the gorm SQL log level: silent, error, warn or info.
	GormLevel string

	AppName     string
	ServiceName string

	Console Console
	File    LogFile `toml:"file"`
}

// level validates cfg and returns its parsed log level.
func (cfg Log) level() (zerolog.Level, error) {
	if cfg.ServiceName == "" {
		return zerolog.NoLevel, ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return zerolog.NoLevel, ErrAppNameIsEmpty
	}

	l, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.NoLevel, pkgerrors.Wrapf(ErrUnknownLevel, "%q", cfg.LogLevel)
	}

	return l, nil
}
