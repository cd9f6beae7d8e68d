package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/migrations"
	"github.com/inkwell/inkwell/internal/storage"
)

// ErrNotPostgres is returned when migrate runs against another backend.
var ErrNotPostgres = errors.New("migrations only apply to postgres DATABASE_URL")

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <up|down>",
		Short: "Apply or revert the Postgres schema",
		Long: `Apply (up) or revert (down) the embedded SQL migrations.

MongoDB and SQLite create their schema on connect and need no migrations.`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"up", "down"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runMigrate(ctx context.Context, rootOpts *RootOptions, direction string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown direction %q: must be up or down", direction)
	}

	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}

	backend, err := storage.Scheme(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if backend != storage.BackendPostgres {
		return fmt.Errorf("%w: got %s", ErrNotPostgres, backend)
	}

	db, err := migrations.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	defer db.Close()

	var versions []string
	if direction == "up" {
		versions, err = migrations.Up(ctx, db)
	} else {
		versions, err = migrations.Down(ctx, db)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(versions) == 0 {
		fmt.Fprintln(out, "nothing to do")
		return nil
	}
	for _, v := range versions {
		fmt.Fprintf(out, "%s %s\n", direction, v)
	}
	return nil
}
