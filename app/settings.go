package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/settingskit/settingskit/internal/schema"
)

var (
	// ErrUnknownSetting is returned when writing a key main.toml does not declare.
	ErrUnknownSetting = errors.New("setting is not declared")
	// ErrNotSet is returned when reading an undeclared key that is not stored.
	ErrNotSet = errors.New("setting is not set")
)

func newGetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(v, readSession, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			key := args[0]

			if def, ok := s.registry.Lookup(key); ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), schema.FormatFor(def.Kind(), def.EffectiveValue(s.store)))

				return err
			}

			// undeclared keys print whatever is stored
			raw, ok := s.store.Object(key)
			if !ok {
				return errors.Wrap(ErrNotSet, key)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), schema.Format(raw))

			return err
		},
	}
}

func newSetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a new value for a declared setting",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(v, writeSession, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			def, ok := s.registry.Lookup(args[0])
			if !ok {
				return errors.Wrap(ErrUnknownSetting, args[0])
			}

			raw, err := schema.Parse(def.Kind(), args[1])
			if err != nil {
				return err
			}

			return def.SetRaw(s.store, raw)
		},
	}
}

func newResetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <key>",
		Short: "Remove the stored value so the setting reads its fallback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(v, writeSession, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			s.store.Remove(args[0])

			return nil
		},
	}
}

func newListCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the declared settings with their effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(v, readSession, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
			_, _ = fmt.Fprintln(w, "KEY\tKIND\tVALUE\tSTORED")

			for _, def := range s.registry.Definitions() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
					def.Key(),
					def.Kind(),
					schema.FormatFor(def.Kind(), def.EffectiveValue(s.store)),
					s.store.Contains(def.Key()),
				)
			}

			return w.Flush()
		},
	}
}
