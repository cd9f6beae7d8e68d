package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/repository/memory"
	"github.com/inkwell/inkwell/internal/server"
)

// NewRoutesCommand creates the routes command.
func NewRoutesCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:           "routes",
		Short:         "Print the HTTP route table",
		Long:          "Print the router's routes and middleware as Markdown, or JSON with --json.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			router := server.NewRouter(server.RouterConfig{Version: rootOpts.Version}, server.Dependencies{
				Repo:   memory.New(),
				Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			})

			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), docgen.JSONRoutesDoc(router))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), docgen.MarkdownRoutesDoc(router, docgen.MarkdownOpts{
				ProjectPath: "github.com/inkwell/inkwell",
				Intro:       "Routes served by inkwell.",
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of Markdown")

	return cmd
}
