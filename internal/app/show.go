package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/tui"
	"github.com/blackwell-systems/booklog/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a book with its notes",
		Long: `Show every field of a book. Notes are printed one paragraph per line
break. The id may be shortened to any unambiguous prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			b, err := resolveBook(cmd.Context(), repo, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(os.Stdout, []catalog.Book{b})
			}

			if util.IsTTY() {
				cm := cacheManager()
				if cm.Exists(b.ID) {
					if img := tui.RenderInlineImage(cm.Path(b.ID), tui.DetectImageProtocol()); img != "" {
						fmt.Println(img)
					}
				}
			}
			printBook(b)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printBook(b catalog.Book) {
	header("%s", b.Title)
	printField("author", b.Author)
	printField("rating", color.YellowString(b.Stars()))
	printField("read on", catalog.FormatDate(b.DateRead))
	if b.ISBN != "" {
		printField("isbn", b.ISBN)
	}
	if b.CoverURL != "" {
		printField("cover", b.CoverURL)
	}
	printField("id", b.ID)
	printField("added", b.CreatedAt.Local().Format(time.DateTime))
	if !b.UpdatedAt.Equal(b.CreatedAt) {
		printField("updated", b.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Println()
	for _, p := range b.Paragraphs() {
		fmt.Println("  " + p)
	}
}
