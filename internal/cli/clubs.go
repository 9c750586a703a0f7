package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/BartekS5/bookclub/internal/etl"
)

type ClubsOptions struct {
	Count int
	Seed  uint64
}

func NewClubsCmd(root *RootOptions) *cobra.Command {
	opts := &ClubsOptions{}

	cmd := &cobra.Command{
		Use:   "clubs",
		Short: "Generate sample book clubs from already loaded users and books",
		RunE: func(c *cobra.Command, args []string) error {
			if !c.Flags().Changed("seed") {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			return runClubs(c, root, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", defaultClubCount, "Number of clubs to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed")

	return cmd
}

// runClubs runs the clubs stage alone, so the users and books tables must
// already hold rows.
func runClubs(c *cobra.Command, root *RootOptions, opts *ClubsOptions) error {
	ctx := c.Context()
	s, err := openSession(ctx, root)
	if err != nil {
		return err
	}
	defer s.Close()

	gate, count := clubGate(ClubChoice{Count: opts.Count, CountSet: true}, nil)

	job := etl.NewJob(s.store, s.cfg)
	job.Clubs = etl.NewClubGenerator(s.store, opts.Seed)
	job.ClubCount = count

	reporter, closeReporter := s.reporter(ctx)
	defer closeReporter()

	pipeline, err := s.newPipeline(job, reporter, gate)
	if err != nil {
		return err
	}
	_, err = pipeline.Run(ctx, []string{etl.StageClubs})
	return err
}
