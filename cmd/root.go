package cmd

import (
	"fmt"

	"github.com/PolarWolf314/foldervault/internal/ui"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the foldervault command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "foldervault",
		Short: "foldervault - encrypt folders in place, unlocked by one passphrase.",
		Long: `foldervault turns ordinary folders into vaults whose files are encrypted
in place and restored on demand.

Each vault has its own key. Vault keys are protected by a master key, which
is in turn protected by a key derived from your passphrase.

Usage:
  foldervault <command> [flags]

Available Commands:
  vault      Create and manage vaults
  config     Manage configuration and the master key

Run 'foldervault help <command>' for more details on a specific command.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
		},
	}

	root.AddCommand(VaultCmd)
	root.AddCommand(ConfigCmd)
	return root
}

func printBanner() {
	fmt.Println()
	figure.NewColorFigure("foldervault", "small", "green", true).Print()
	fmt.Println()
	fmt.Println("Welcome to foldervault! Run " + ui.Code.Sprint("foldervault --help") + " to see available commands.")
}
