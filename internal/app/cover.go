package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/blackwell-systems/booklog/internal/cache"
	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/cover"
	"github.com/blackwell-systems/booklog/internal/tui"
	"github.com/blackwell-systems/booklog/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// coverDownloads bounds concurrent image downloads.
const coverDownloads = 4

func newCoverCmd() *cobra.Command {
	var (
		sizeFlag string
		download bool
	)

	cmd := &cobra.Command{
		Use:   "cover <isbn>",
		Short: "Look up the Open Library cover for an ISBN",
		Long: `Look up a cover on Open Library. Only responses large enough to be a
real image count; unknown ISBNs get a placeholder and report no cover.

With --download the image is saved to the cover cache and, on terminals
that support it, shown inline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isbn := strings.TrimSpace(args[0])
			if sizeFlag == "" {
				sizeFlag = cfg.Cover.Size
			}
			size, err := cover.ParseSize(sizeFlag)
			if err != nil {
				return err
			}

			url, found := newOpenLibrary().ResolveSize(cmd.Context(), isbn, size)
			if !found {
				warn("No cover found for ISBN %s", isbn)
				return nil
			}
			ok("Cover found")
			printField("url", url)

			if !download {
				return nil
			}
			cm := cacheManager()
			path, sum, err := cm.Download(cmd.Context(), url, isbn)
			if err != nil {
				return err
			}
			printField("saved", path)
			printField("sha256", sum)
			if util.IsTTY() {
				if img := tui.RenderInlineImage(path, tui.DetectImageProtocol()); img != "" {
					fmt.Println(img)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sizeFlag, "size", "", "Cover size: S, M or L (default: cover.size)")
	cmd.Flags().BoolVar(&download, "download", false, "Save the image to the cover cache")
	return cmd
}

func newCoversCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Maintain the covers of every book",
	}

	var download bool
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Look up covers again for every book with an ISBN",
		Long: `Re-resolve the cover of every book that has an ISBN and save the ones
that changed. With --download, cover images are also cached locally for
'booklog index' and the browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			changed, err := repo.RefreshCovers(cmd.Context())
			if err != nil {
				return err
			}
			ok("%d cover(s) changed", changed)

			if !download {
				return nil
			}
			books, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			cm := cacheManager()
			n, err := downloadCovers(cmd.Context(), cm, books, true)
			if err != nil {
				return err
			}
			ok("%d cover image(s) cached in %s", n, cm.Dir())
			return nil
		},
	}
	refresh.Flags().BoolVar(&download, "download", false, "Also cache cover images locally")

	cmd.AddCommand(refresh)
	return cmd
}

// downloadCovers caches the cover image of every book that has one. With
// force unset, books already cached are skipped. Individual failures are
// warnings; only cancellation aborts.
func downloadCovers(ctx context.Context, cm *cache.Manager, books []catalog.Book, force bool) (int, error) {
	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(coverDownloads)

	for _, b := range books {
		if b.CoverURL == "" || (!force && cm.Exists(b.ID)) {
			continue
		}
		g.Go(func() error {
			if _, _, err := cm.Download(ctx, b.CoverURL, b.ID); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				warn("Could not cache cover for %q: %v", b.Title, err)
				return nil
			}
			done.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(done.Load()), err
}
