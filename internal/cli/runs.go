package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/BartekS5/bookclub/internal/config"
	"github.com/BartekS5/bookclub/internal/etl"
	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/logger"
)

func NewRunsCmd(root *RootOptions) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent load runs recorded in MongoDB",
		RunE: func(c *cobra.Command, args []string) error {
			return runRuns(c, root, limit)
		},
	}
	cmd.Flags().Int64VarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func runRuns(c *cobra.Command, root *RootOptions, limit int64) error {
	ctx := c.Context()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	defer logger.Close()

	if !cfg.Mongo.Enabled() {
		return errors.Errorf("%s is not set; run reports are only kept in MongoDB", config.KeyMongoConnString)
	}
	client, err := database.ConnectMongo(ctx, cfg.Mongo.ConnString)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	runs, err := etl.NewMongoReporter(client, cfg.Mongo.Database, cfg.Mongo.Collection).RecentRuns(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tDRIVER\tSTATUS\tELAPSED\tSTAGES")
	for _, r := range runs {
		stages := make([]string, 0, len(r.Stages))
		for _, s := range r.Stages {
			stages = append(stages, fmt.Sprintf("%s=%d/%d", s.Stage, s.Loaded, s.Attempted))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RunID, r.StartedAt.Format(time.DateTime), r.Driver, r.Status,
			r.Elapsed.Round(time.Second), strings.Join(stages, " "))
	}
	return w.Flush()
}
