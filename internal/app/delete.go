package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/tui/picker"
	"github.com/blackwell-systems/booklog/internal/util"
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a book",
		Long: `Delete a book from the collection. Deleting a book that is not there
is not an error.

Examples:
  booklog delete 3f2a9c1e
  booklog delete 3f2a9c1e --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			b, err := pickOrResolve(cmd, repo, args, "Delete which book?")
			switch {
			case errors.Is(err, picker.ErrCanceled):
				return nil
			case errors.Is(err, catalog.ErrNotFound):
				warn("No book with id %s, nothing to delete", args[0])
				return nil
			case err != nil:
				return err
			}

			if !skipConfirm {
				if !util.IsInteractive() {
					return fmt.Errorf("refusing to delete without --yes when not running in a terminal")
				}
				fmt.Printf("Delete %q by %s? (y/N): ", b.Title, b.Author)
				if !confirmed(os.Stdin) {
					warn("Kept %q", b.Title)
					return nil
				}
			}

			removed, err := repo.Delete(cmd.Context(), b.ID)
			if err != nil {
				return err
			}
			if removed {
				ok("Deleted %q", b.Title)
				if err := cacheManager().Remove(b.ID); err != nil {
					warn("Could not remove cached cover: %v", err)
				}
			} else {
				warn("%q was already gone", b.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

// confirmed reads one line and reports whether it is a yes.
func confirmed(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
