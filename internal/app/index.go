package app

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var (
		flagOpen    bool
		fetchCovers bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Generate a local HTML page of your collection",
		Long: `Generate an index.html file in the cover cache directory showing every
book in a grid with its cover, rating and notes. Open it in any web browser
to look through your reading log without running booklog.

Covers must be cached to appear; --fetch-covers downloads the missing ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			books, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(books) == 0 {
				warn("No books yet. Add one first:")
				fmt.Println("  booklog add")
				return nil
			}

			key, err := sortKey("")
			if err != nil {
				return err
			}
			books = catalog.View{Sort: key, Locale: viewLocale()}.Apply(books)

			cm := cacheManager()
			if fetchCovers {
				n, err := downloadCovers(cmd.Context(), cm, books, false)
				if err != nil {
					return err
				}
				if n > 0 {
					ok("Cached %d cover image(s)", n)
				}
			}

			indexPath, err := cm.GenerateHTMLIndex(cm.IndexBooks(books))
			if err != nil {
				return fmt.Errorf("generating index: %w", err)
			}
			ok("Generated HTML index with %d books", len(books))

			if flagOpen {
				if err := openInBrowser(indexPath); err != nil {
					warn("Could not open browser: %v", err)
					fmt.Printf("\nOpen in browser:\n  file://%s\n", indexPath)
				}
			} else {
				fmt.Printf("\nOpen in browser:\n  file://%s\n", indexPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagOpen, "open", false, "Open the generated index in the default browser")
	cmd.Flags().BoolVar(&fetchCovers, "fetch-covers", false, "Download missing cover images first")
	return cmd
}

func openInBrowser(path string) error {
	var openCmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		openCmd = exec.Command("open", path)
	case "windows":
		openCmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		openCmd = exec.Command("xdg-open", path)
	}
	return openCmd.Start()
}
