package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BartekS5/bookclub/pkg/database"
)

func NewSearchCmd(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search loaded data",
	}
	cmd.AddCommand(newSearchBooksCmd(root))
	return cmd
}

func newSearchBooksCmd(root *RootOptions) *cobra.Command {
	var (
		title, author, isbn, publisher string
		year, limit                    int
	)

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Search books by title, author, ISBN, publisher or year",
		RunE: func(c *cobra.Command, args []string) error {
			f := database.BookFilter{Limit: limit}
			flags := c.Flags()
			if flags.Changed("title") {
				f.Title = &title
			}
			if flags.Changed("author") {
				f.Author = &author
			}
			if flags.Changed("isbn") {
				f.ISBN = &isbn
			}
			if flags.Changed("publisher") {
				f.Publisher = &publisher
			}
			if flags.Changed("year") {
				f.Year = &year
			}
			return runSearchBooks(c, root, f)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title contains")
	cmd.Flags().StringVar(&author, "author", "", "Author name contains")
	cmd.Flags().StringVar(&isbn, "isbn", "", "Exact ISBN (hyphens allowed)")
	cmd.Flags().StringVar(&publisher, "publisher", "", "Publisher name contains")
	cmd.Flags().IntVar(&year, "year", 0, "Year of publication")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to return (default 50)")

	return cmd
}

func runSearchBooks(c *cobra.Command, root *RootOptions, f database.BookFilter) error {
	ctx := c.Context()
	s, err := openSession(ctx, root)
	if err != nil {
		return err
	}
	defer s.Close()

	books, err := s.store.SearchBooks(ctx, f)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ISBN\tTITLE\tYEAR\tPUBLISHER")
	for _, b := range books {
		year, publisher := "-", "-"
		if b.Year != nil {
			year = strconv.Itoa(*b.Year)
		}
		if b.Publisher != nil {
			publisher = *b.Publisher
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ISBN, b.Title, year, publisher)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "%d books\n", len(books))
	return nil
}
