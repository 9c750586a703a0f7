package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/BartekS5/bookclub/internal/etl"
	"github.com/BartekS5/bookclub/pkg/logger"
)

type LoadOptions struct {
	Only         []string
	Clubs        int
	Yes          bool
	Seed         uint64
	CreateSchema bool
}

func NewLoadCmd(root *RootOptions) *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the CSV datasets into the database",
		Long: `Runs the load stages in dependency order:
publishers, authors, books, book-authors, users, ratings and the optional
sample clubs. --only restricts the run to some stages; their dependencies
must then already be loaded.`,
		RunE: func(c *cobra.Command, args []string) error {
			choice := ClubChoice{Count: opts.Clubs, CountSet: c.Flags().Changed("clubs"), Yes: opts.Yes}
			if !c.Flags().Changed("seed") {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			return runLoad(c, root, opts, choice)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "Run only these stages (comma separated)")
	cmd.Flags().IntVar(&opts.Clubs, "clubs", 0, "Generate this many sample clubs without prompting (0 skips them)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Generate sample clubs without prompting")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed for sample clubs")
	cmd.Flags().BoolVar(&opts.CreateSchema, "create-schema", false, "Create missing tables before loading")

	return cmd
}

func runLoad(c *cobra.Command, root *RootOptions, opts *LoadOptions, choice ClubChoice) error {
	ctx := c.Context()
	s, err := openSession(ctx, root)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.CreateSchema {
		if err := s.store.CreateSchema(ctx); err != nil {
			return err
		}
	}

	logger.Info("BOOK CLUB - DATA LOADER")
	gate, count := clubGate(choice, NewPrompt(c.InOrStdin(), c.OutOrStdout()))

	job := etl.NewJob(s.store, s.cfg)
	job.Clubs = etl.NewClubGenerator(s.store, opts.Seed)
	job.ClubCount = count

	reporter, closeReporter := s.reporter(ctx)
	defer closeReporter()

	pipeline, err := s.newPipeline(job, reporter, gate)
	if err != nil {
		return err
	}
	_, err = pipeline.Run(ctx, opts.Only)
	return err
}
