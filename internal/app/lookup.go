package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/tui"
	"github.com/spf13/cobra"
)

// bookLister is the read side of the repository.
type bookLister interface {
	Get(ctx context.Context, id string) (catalog.Book, error)
	List(ctx context.Context) ([]catalog.Book, error)
}

// resolveBook finds a book by full ID or by an unambiguous ID prefix.
func resolveBook(ctx context.Context, repo bookLister, ref string) (catalog.Book, error) {
	ref = strings.TrimSpace(ref)
	b, err := repo.Get(ctx, ref)
	if err == nil || !errors.Is(err, catalog.ErrNotFound) || ref == "" {
		return b, err
	}

	books, err := repo.List(ctx)
	if err != nil {
		return catalog.Book{}, err
	}
	var matches []catalog.Book
	for _, b := range books {
		if strings.HasPrefix(b.ID, ref) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return catalog.Book{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return catalog.Book{}, fmt.Errorf("id prefix %q matches %d books, use more characters", ref, len(matches))
}

// pickOrResolve returns the book named by args[0], or lets the user pick
// one when no id was given and a terminal is available.
func pickOrResolve(cmd *cobra.Command, repo bookLister, args []string, title string) (catalog.Book, error) {
	if len(args) > 0 {
		return resolveBook(cmd.Context(), repo, args[0])
	}
	if !tui.ShouldUseTUI(cmd) {
		return catalog.Book{}, fmt.Errorf("book id required")
	}

	books, err := repo.List(cmd.Context())
	if err != nil {
		return catalog.Book{}, err
	}
	key, err := sortKey("")
	if err != nil {
		return catalog.Book{}, err
	}
	sorted := catalog.View{Sort: key, Locale: viewLocale()}.Apply(books)
	return tui.RunBookPicker(sorted, title)
}
