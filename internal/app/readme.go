package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklog/internal/github"
	"github.com/blackwell-systems/booklog/internal/readme"
	"github.com/spf13/cobra"
)

func newReadmeCmd() *cobra.Command {
	var (
		limit    int
		repoFlag string
		path     string
	)

	cmd := &cobra.Command{
		Use:   "readme [file]",
		Short: "Update the reading list in a markdown README",
		Long: `Rewrite the "## Recently Read" section of a markdown file with your most
recently read books, and any "**N books**" marker with the current count.
Everything else in the file is left alone.

Without a file, --github updates README.md in a GitHub repository using
the configured token.

Examples:
  booklog readme ~/site/README.md
  booklog readme --github alice/alice --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (repoFlag == "") {
				return fmt.Errorf("give either a file or --github owner/repo")
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

			var changed bool
			target := ""
			if len(args) == 1 {
				target = args[0]
				changed, err = readme.UpdateFile(target, books, limit)
			} else {
				owner, name, found := strings.Cut(repoFlag, "/")
				if !found || owner == "" || name == "" {
					return fmt.Errorf("--github wants owner/repo, got %q", repoFlag)
				}
				gh := github.New(cfg.GitHub.Token, cfg.GitHub.APIBase)
				target = repoFlag + "/" + path
				changed, err = readme.NewUpdater(gh, owner, name, path, cfg.GitHub.Branch).Update(cmd.Context(), books, limit)
			}
			if err != nil {
				return err
			}
			if changed {
				ok("Updated %s", target)
			} else {
				warn("No changes made to %s", target)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", readme.DefaultLimit, "How many recent books to list")
	cmd.Flags().StringVar(&repoFlag, "github", "", "Update a README in this GitHub repository (owner/repo)")
	cmd.Flags().StringVar(&path, "path", "README.md", "File path inside the GitHub repository")
	return cmd
}
