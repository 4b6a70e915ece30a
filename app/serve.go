package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/internal/daemon"
	"github.com/settingskit/settingskit/internal/logger"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	var cfg config.Config

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the settings API web service",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = loadConfig(v); err != nil {
				return err
			}

			if v.GetBool(flagDev) {
				cfg.DevMode = true
			}

			if port := v.GetInt(flagPort); port > 0 {
				cfg.Webserver.Port = port
			}

			return logger.Init(cfg.Log)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			return d.Start()
		},
	}

	serveCmd.Flags().Bool(flagDev, false, "Enable dev mode")
	serveCmd.Flags().Int(flagPort, 0, "Override the webserver port")
	_ = v.BindPFlag(flagDev, serveCmd.Flags().Lookup(flagDev))
	_ = v.BindPFlag(flagPort, serveCmd.Flags().Lookup(flagPort))

	return serveCmd
}
