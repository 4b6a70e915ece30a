// Package logger configures the process-wide zerolog logger of settingskit.
//
// Init builds a root logger from the Log configuration and installs it as
// the global zerolog logger. Packages that log on their own behalf take a
// Component or Store logger, whose statements are counted in
// settingskit_log_statements_total under their component label.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// root is the configured logger before any counting hook is attached.
// Loggers derive from it so each statement is counted once.
var root = zerolog.New(os.Stderr).With().Timestamp().Logger() //nolint:gochecknoglobals

// LevelWriter routes an event to one of four writers by level: trace,
// debug and info, warn, error and above. A nil route drops the event.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	w := lw.route(l)
	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

func (lw *LevelWriter) route(l zerolog.Level) io.Writer {
	switch {
	case l == zerolog.Disabled:
		return nil
	case l == zerolog.TraceLevel:
		return lw.TraceWriter
	case l == zerolog.WarnLevel:
		return lw.WarnWriter
	case l > zerolog.WarnLevel:
		return lw.ErrorWriter
	default:
		return lw.InfoWriter
	}
}

// Init validates cfg and installs the global logger it describes. With no
// writer enabled the logger discards everything.
func Init(cfg Log) error {
	level, err := cfg.level()
	if err != nil {
		return err
	}

	if level == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorHandler = writeFailed //nolint:reassign

	registerMetrics(cfg.ServiceName)

	ctx := zerolog.New(zerolog.MultiLevelWriter(outputs(cfg)...)).
		With().
		Timestamp().
		Str("app", cfg.AppName)

	switch {
	case cfg.ReportCaller && level == zerolog.TraceLevel:
		ctx = ctx.Stack()
	case cfg.ReportCaller:
		ctx = ctx.Caller()
	}

	root = ctx.Logger()
	log.Logger = root.Hook(componentHook(mainComponent))

	return nil
}

// Component returns a logger tagged and counted as the named component.
func Component(name string) zerolog.Logger {
	return root.With().Str("component", name).Logger().Hook(componentHook(name))
}

// Store returns the component logger of a settings store, tagged with the
// backend driver and the sub-store name when there is one.
func Store(driver, name string) zerolog.Logger {
	ctx := root.With().Str("component", "store").Str("driver", driver)
	if name != "" {
		ctx = ctx.Str("store", name)
	}

	return ctx.Logger().Hook(componentHook("store"))
}

// outputs returns the writers enabled by cfg.
func outputs(cfg Log) []io.Writer {
	var out []io.Writer

	if cfg.Console.Enabled {
		out = append(out, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		if w := levelFiles(cfg.File); w != nil {
			out = append(out, w)
		}
	}

	return out
}

// levelFiles splits the log over the rolling files of f. It returns nil
// when the log directory can not be created.
func levelFiles(f LogFile) io.Writer {
	if err := os.MkdirAll(f.Path, 0o750); err != nil { //nolint:mnd
		log.Error().Err(err).Str("path", f.Path).Msg("can't create log directory")

		return nil
	}

	return &LevelWriter{
		ErrorWriter: f.Rolling(f.ErrorLog),
		InfoWriter:  f.Rolling(f.InfoLog),
		TraceWriter: f.Rolling(f.TraceLog),
		WarnWriter:  f.Rolling(f.WarnLog),
	}
}

// NewConsoleWriter returns the console writer of cfg: info and debug go to
// stdout, everything else to stderr.
func NewConsoleWriter(cfg Log) io.Writer {
	out, errOut := console(os.Stdout, cfg.Console), console(os.Stderr, cfg.Console)

	return &LevelWriter{
		ErrorWriter: errOut,
		InfoWriter:  out,
		TraceWriter: errOut,
		WarnWriter:  errOut,
	}
}

func console(w io.Writer, c Console) io.Writer {
	if !c.UseConsoleWriter {
		return w
	}

	return zerolog.ConsoleWriter{Out: w, TimeFormat: zerolog.TimeFieldFormat}
}
