package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/fixture"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	Count int
	Seed  int64
	Clear bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fake blog posts",
		Long: `Insert randomly generated blog posts into DATABASE_URL.

With --clear every existing post is deleted first. A fixed --seed
produces the same posts on every run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), rootOpts, opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 9, "number of posts to insert")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 uses the current time)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing posts first")

	return cmd
}

func runSeed(ctx context.Context, rootOpts *RootOptions, opts *SeedOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Count < 0 {
		return fmt.Errorf("--count must not be negative, got %d", opts.Count)
	}

	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if opts.Clear {
		if err := repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	posts := fixture.New(seed).Posts(opts.Count)
	if err := repo.CreateMany(ctx, posts); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d posts into %s (%d total)\n", len(posts), repo.Name(), total)
	return nil
}
