// Package app implements the main application commands.
package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/daemon"
	"github.com/settingskit/settingskit/internal/schema"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

// envPrefix prefixes the environment variables bound to flags,
// e.g. SETTINGSKIT_CONFIG for --config.
const envPrefix = "SETTINGSKIT"

const memoryDriver = "memory"

// ErrEphemeralStore is returned by commands that write when the configured
// store driver keeps values in memory only.
var ErrEphemeralStore = errors.New("the memory store driver does not persist values between commands")

const (
	flagConfig = "config"
	flagDev    = "dev"
	flagPort   = "port"
)

// NewRootCommand builds the settingskit command tree.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "settingskit",
		Short: "settingskit manages typed application settings",
		Long: `settingskit manages typed application settings declared in main.toml
and persisted in memory, sqlite, mysql, postgres or a gofiber storage.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "./etc/", "directory holding main.toml")
	_ = v.BindPFlag(flagConfig, rootCmd.PersistentFlags().Lookup(flagConfig))

	rootCmd.AddCommand(
		newGetCommand(v),
		newSetCommand(v),
		newResetCommand(v),
		newListCommand(v),
		newServeCommand(v),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig reads main.toml from the configured directory.
func loadConfig(v *viper.Viper) (config.Config, error) {
	path := v.GetString(flagConfig)
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return config.ReadConfig(path)
}

// session is what the settings commands work on.
type session struct {
	store    *store.Store
	registry *settings.Registry
}

// sessionMode tells openSession whether the command persists anything.
type sessionMode int

const (
	readSession sessionMode = iota
	writeSession
)

// openSession opens the configured store. A memory store does not outlive
// the command, so writes to it are refused and reads from it are flagged
// on warn.
func openSession(v *viper.Viper, mode sessionMode, warn io.Writer) (*session, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Driver == memoryDriver {
		if mode == writeSession {
			return nil, ErrEphemeralStore
		}

		_, _ = fmt.Fprintln(warn, "warning: the memory store is empty in a new process, values shown are fallbacks")
	}

	registry, err := schema.Build(cfg.Settings)
	if err != nil {
		return nil, errors.Wrap(err, "invalid settings schema")
	}

	st, err := daemon.OpenStore(&cfg)
	if err != nil {
		return nil, err
	}

	return &session{store: st, registry: registry}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}
