package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions are the flags shared by every sub-command.
type RootOptions struct {
	ConfigFile string
}

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "bookclub",
		Short: "bookclub - bulk loader for the book club database",
		Long: `bookclub loads the books, users and ratings CSV datasets into the book club
database and can generate sample clubs on top of the loaded data.
MySQL, PostgreSQL, SQL Server and SQLite are supported as targets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a config file (default ./bookclub.yaml when present)")

	rootCmd.AddCommand(
		NewLoadCmd(opts),
		NewSchemaCmd(opts),
		NewClubsCmd(opts),
		NewSearchCmd(opts),
		NewRunsCmd(opts),
	)

	return rootCmd
}
