package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/bookclub/pkg/logger"
)

func NewSchemaCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the book club tables for the configured database",
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			s, err := openSession(ctx, root)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.CreateSchema(ctx); err != nil {
				return err
			}
			logger.Infof("Schema ready on %s.", s.store.Dialect().Name())
			return nil
		},
	}
}
