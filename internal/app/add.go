package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/blackwell-systems/booklog/internal/tui"
	"github.com/blackwell-systems/booklog/internal/tui/picker"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var flags bookFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book you have read",
		Long: `Add a book to the collection.

In a terminal with no field flags, an interactive form opens and shows
a cover preview as you type the ISBN. Otherwise the flags are used;
rating defaults to 3 and the read date to today.

Examples:
  booklog add
  booklog add --title Dune --author "Frank Herbert" --isbn 9780441013593 \
    --rating 5 --notes "Spice must flow.\nThe sequel is next."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := form.Defaults(nil, time.Now())

			var fields catalog.Fields
			if !flags.anySet(cmd) && tui.ShouldUseTUI(cmd) {
				var err error
				fields, err = tui.RunBookForm(tui.BookFormOptions{
					Heading: "Add Book",
					Initial: initial,
					Covers:  newOpenLibrary(),
				})
				if errors.Is(err, picker.ErrCanceled) {
					warn("Canceled, nothing saved")
					return nil
				}
				if err != nil {
					return err
				}
			} else {
				var err error
				fields, err = form.Validate(flags.overlay(cmd.Flags(), initial))
				if err != nil {
					return err
				}
			}

			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			b, err := repo.Create(cmd.Context(), fields)
			if err != nil {
				return err
			}
			ok("Added %q (%s)", b.Title, shortID(b.ID))
			reportCover(b)
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newEditCmd() *cobra.Command {
	var flags bookFlags

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a book",
		Long: `Edit a book. Flags replace only the fields they name; the others keep
their stored values. With no flags in a terminal the form opens
pre-filled. Without an id in a terminal, pick the book from a list.

Saving with an ISBN looks the cover up again; clearing the ISBN keeps
the previous cover.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			current, err := pickOrResolve(cmd, repo, args, "Edit which book?")
			if errors.Is(err, picker.ErrCanceled) {
				return nil
			}
			if err != nil {
				return err
			}

			var fields catalog.Fields
			if !flags.anySet(cmd) && tui.ShouldUseTUI(cmd) {
				fields, err = tui.RunBookForm(tui.BookFormOptions{
					Heading:  "Edit Book",
					Subtitle: current.ID,
					Initial:  form.Defaults(&current, time.Now()),
					Covers:   newOpenLibrary(),
				})
				if errors.Is(err, picker.ErrCanceled) {
					warn("Canceled, nothing saved")
					return nil
				}
				if err != nil {
					return err
				}
			} else {
				if !flags.anySet(cmd) {
					return fmt.Errorf("nothing to change: pass at least one of --%s", strings.Join(bookFlagNames, ", --"))
				}
				fields, err = form.Validate(flags.overlay(cmd.Flags(), form.FromBook(current)))
				if err != nil {
					return err
				}
			}

			b, err := repo.Update(cmd.Context(), current.ID, fields)
			if err != nil {
				return err
			}
			ok("Updated %q", b.Title)
			reportCover(b)
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func reportCover(b catalog.Book) {
	switch {
	case b.CoverURL != "":
		printField("cover", b.CoverURL)
	case b.ISBN != "":
		warn("No cover found for ISBN %s", b.ISBN)
	}
}
