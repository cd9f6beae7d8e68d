// Package cli wires configuration, storage and the HTTP server behind the
// inkwell command line.
package cli

import (
	"github.com/caarlos0/env/v10"
	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/config"
)

// RootOptions holds settings shared by every command.
type RootOptions struct {
	Version string

	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// NewRootCommand creates the root command. Without a subcommand it serves HTTP.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}
	return newRootCommand(opts)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inkwell",
		Short:         "Inkwell - blog post API",
		Long:          "A JSON REST API for blog posts backed by Postgres, MongoDB, SQLite or memory.",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd)
		},
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRoutesCommand(opts))

	return cmd
}

// loadConfig reads configuration from the environment.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.Environment != nil {
		return config.LoadWithOptions(env.Options{Environment: o.Environment})
	}
	return config.Load()
}
