package tui

import (
	"github.com/blackwell-systems/booklog/internal/util"
	"github.com/spf13/cobra"
)

// ShouldUseTUI reports whether cmd should open an interactive screen: the
// terminal must be interactive and neither --no-interactive nor --json set.
func ShouldUseTUI(cmd *cobra.Command) bool {
	if !util.IsInteractive() {
		return false
	}
	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		return false
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return false
	}
	return true
}
