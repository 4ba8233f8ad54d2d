package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/blackwell-systems/booklog/internal/ingest"
	"github.com/blackwell-systems/booklog/internal/util"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole collection as JSON or YAML",
		Long: `Export every book. The JSON form is the same array the store keeps,
so it can be imported here or elsewhere.

Examples:
  booklog export > books.json
  booklog export --format yaml -o books.yml`,
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
			data, err := encodeExport(books, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := util.WriteFileAtomic(output, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			ok("Exported %d book(s) to %s", len(books), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		format      string
		dryRun      bool
		skipInvalid bool
	)

	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Add books from a JSON or YAML export",
		Long: `Import books from an export. Every record is validated first; by default
one bad record aborts the whole import. Records without an id, or whose
id is already taken, get a new one. Missing timestamps are filled in.

The source can be a local file, "-" for stdin, an http(s) URL, or a file
in a GitHub repository written as github:owner/repo@ref:path.

Examples:
  booklog import books.json
  booklog import old.yml --skip-invalid
  booklog import https://example.com/books.json
  booklog import github:alice/notes@main:books.json
  cat books.json | booklog import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := ingest.Read(cmd.Context(), args[0], ingest.Options{
				GitHubToken:   cfg.GitHub.Token,
				GitHubAPIBase: cfg.GitHub.APIBase,
			})
			if err != nil {
				return err
			}

			books, err := decodeImport(name, format, data)
			if err != nil {
				return err
			}
			valid, problems := validateImport(books)
			for _, p := range problems {
				warn("%s", p)
			}
			if len(problems) > 0 && !skipInvalid {
				return fmt.Errorf("%d invalid record(s), nothing imported (use --skip-invalid to import the rest)", len(problems))
			}
			if dryRun {
				ok("Would import %d book(s)", len(valid))
				return nil
			}
			if len(valid) == 0 {
				warn("Nothing to import")
				return nil
			}

			repo, closeRepo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			n, err := repo.Import(cmd.Context(), valid)
			if err != nil {
				return err
			}
			ok("Imported %d book(s)", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Input format: json or yaml (default: from the file extension)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, import nothing")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "Import the valid records and skip the rest")
	return cmd
}

func encodeExport(books []catalog.Book, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", formatJSON:
		return catalog.MarshalIndent(books)
	case formatYAML, "yml":
		return catalog.MarshalYAML(books)
	}
	return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
}

// decodeImport parses data as JSON or YAML. Without an explicit format the
// file extension decides, and content starting with "[" is JSON.
func decodeImport(name, format string, data []byte) ([]catalog.Book, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			format = formatYAML
		case ".json":
			format = formatJSON
		default:
			if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
				format = formatJSON
			} else {
				format = formatYAML
			}
		}
	}

	var (
		books []catalog.Book
		err   error
	)
	switch strings.ToLower(format) {
	case formatJSON:
		books, err = catalog.Parse(data)
	case formatYAML, "yml":
		books, err = catalog.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return books, nil
}

// validateImport splits records into valid ones and one message per bad
// record.
func validateImport(books []catalog.Book) ([]catalog.Book, []string) {
	var (
		valid    []catalog.Book
		problems []string
	)
	for i, b := range books {
		err := form.ValidateBook(b)
		if err == nil {
			valid = append(valid, b)
			continue
		}
		label := b.Title
		if label == "" {
			label = fmt.Sprintf("record %d", i+1)
		}
		var ferr *form.Error
		if errors.As(err, &ferr) {
			msgs := make([]string, len(ferr.Fields))
			for j, f := range ferr.Fields {
				msgs[j] = f.Message
			}
			problems = append(problems, fmt.Sprintf("%s: %s", label, strings.Join(msgs, "; ")))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: %v", label, err))
	}
	return valid, problems
}
