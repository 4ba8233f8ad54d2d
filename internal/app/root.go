package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackwell-systems/booklog/internal/config"
	"github.com/blackwell-systems/booklog/internal/tui"
	"github.com/blackwell-systems/booklog/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	flagNoColor       bool
	flagNoInteractive bool
	flagVerbose       bool
	flagConfig        string
)

var rootCmd = &cobra.Command{
	Use:   "booklog",
	Short: "Keep a log of the books you have read",
	Long: `booklog records the books you have read: a rating, notes and the date
you finished each one. Covers are looked up on Open Library by ISBN.

The collection lives in a single entry of a local store (a JSON file by
default; redis, sqlite and a GitHub repository are also supported).

Run 'booklog' with no arguments in a terminal to browse your books.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return runBrowse(cmd, "")
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
// Interrupts cancel the command context so servers and lookups stop cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/booklog/config.yml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		switch cmd.Name() {
		case "version", "completion", "help":
			return nil
		}

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Log.Level
		if flagVerbose {
			level = "debug"
		}
		logger = newLogger(os.Stderr, level, cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	}

	rootCmd.AddCommand(
		newListCmd(),
		newSearchCmd(),
		newShowCmd(),
		newAddCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newBrowseCmd(),
		newCoverCmd(),
		newCoversCmd(),
		newExportCmd(),
		newImportCmd(),
		newIndexCmd(),
		newReadmeCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}

func printField(label, value string) {
	fmt.Printf("  %-12s %s\n", color.CyanString(label+":"), value)
}
