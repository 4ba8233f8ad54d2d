package app

import (
	"context"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse your books (interactive TUI or text output)",
		Long: `Browse the collection interactively: / filters by title or author,
s cycles the sort order, enter shows a book's notes. If loading fails,
r retries.

Without a terminal the list is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui.ShouldUseTUI(cmd) {
				return runList(cmd, listOptions{sort: sortFlag})
			}
			return runBrowse(cmd, sortFlag)
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "Initial sort: rating, dateRead or title")
	return cmd
}

func runBrowse(cmd *cobra.Command, sortFlag string) error {
	key, err := sortKey(sortFlag)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepo(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRepo()

	cm := cacheManager()
	return tui.RunBrowser(tui.BrowserOptions{
		Load: func(ctx context.Context) ([]catalog.Book, error) {
			return repo.List(ctx)
		},
		Sort:   key,
		Locale: viewLocale(),
		CoverImage: func(b catalog.Book) (string, bool) {
			if !cm.Exists(b.ID) {
				return "", false
			}
			return cm.Path(b.ID), true
		},
	})
}
