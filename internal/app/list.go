package app

import (
	"os"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		sortFlag string
		query     string
		minRating string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List books, newest read first",
		Long: `List the collection, filtered and sorted.

Sort keys:
  dateRead  most recently read first (default)
  rating    highest rated first
  title     alphabetical, using view.locale collation

Examples:
  booklog list
  booklog list --sort rating
  booklog list --min-rating 4
  booklog list --query austen --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, listOptions{sort: sortFlag, query: query, minRating: minRating, json: jsonOut})
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "Sort by rating, dateRead or title (default: view.sort)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only books whose title or author contains this text")
	cmd.Flags().StringVar(&minRating, "min-rating", "", "Only books rated at least this many stars (0-5)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	_ = cmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		keys := make([]string, len(catalog.SortKeys))
		for i, k := range catalog.SortKeys {
			keys[i] = string(k)
		}
		return keys, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

type listOptions struct {
	sort      string
	query     string
	minRating string
	json      bool
}

// view turns the list flags into a catalog view.
func (o listOptions) view() (catalog.View, error) {
	key, err := sortKey(o.sort)
	if err != nil {
		return catalog.View{}, err
	}
	minRating, err := catalog.ParseMinRating(o.minRating)
	if err != nil {
		return catalog.View{}, err
	}
	return catalog.View{Query: o.query, MinRating: minRating, Sort: key, Locale: viewLocale()}, nil
}

func runList(cmd *cobra.Command, opts listOptions) error {
	view, err := opts.view()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepo(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRepo()

	books, err := repo.List(cmd.Context())
	if err != nil {
		return err
	}
	shown := view.Apply(books)

	if opts.json {
		return writeJSON(os.Stdout, shown)
	}
	if len(books) == 0 {
		warn("No books yet. Add one with: booklog add")
		return nil
	}
	header("%s · sorted by %s", countLine(len(books)), view.Sort.Label())
	if len(shown) == 0 {
		warn("No books match the filter")
		return nil
	}
	printBooks(os.Stdout, shown)
	return nil
}

func newSearchCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title or author",
		Long: `Search the collection for books whose title or author contains the
query (case-insensitive). Results keep the stored order.

Examples:
  booklog search dune
  booklog search "ursula le guin" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			results, err := repo.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(os.Stdout, results)
			}
			if len(results) == 0 {
				warn("No books match %q", args[0])
				return nil
			}
			header("%d match(es) for %q", len(results), args[0])
			printBooks(os.Stdout, results)
			color.HiBlack("\nUse 'booklog show <id>' for notes")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
