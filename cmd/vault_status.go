package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/registry"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show how many files of each vault are encrypted",
	Long: `Counts encrypted and plain files in the folder of one vault, or of every
vault when no ID is given, and flags vaults whose files do not match their
recorded state. No passphrase is needed.

Examples:
  foldervault vault status
  foldervault vault status 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")
		spinner, cleanup := startSpinner("Checking vaults...", verbose, debug)
		defer cleanup()

		var id int64
		if len(args) == 1 {
			var err error
			if id, err = parseVaultID(args[0]); err != nil {
				spinner.FinalMSG = ui.ErrorLine(err.Error())
				return err
			}
		}

		env, err := openEnv(spinner)
		if err != nil {
			return reportError(spinner, err)
		}
		defer env.Close()

		result, err := workflows.Status(cmd.Context(), env, workflows.StatusOptions{ID: id})
		if err != nil {
			return reportError(spinner, err)
		}

		if len(result.Vaults) == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No vaults yet"
			return nil
		}

		spinner.FinalMSG = formatStatus(result.Vaults)
		return nil
	},
}

func formatStatus(statuses []workflows.VaultStatus) string {
	var b strings.Builder
	for i, st := range statuses {
		if i > 0 {
			b.WriteString("\n")
		}
		v := st.Vault
		fmt.Fprintf(&b, "%s %s %s\n", ui.Highlight.Sprintf("[%d]", v.ID), v.Title, ui.VaultMode(string(v.Mode)))
		fmt.Fprintf(&b, "  %-10s %s\n", "Path:", ui.Path.Sprint(v.Path))

		if st.Missing {
			fmt.Fprintf(&b, "  %s Folder is missing\n", ui.Error.Sprint("✗"))
			continue
		}

		fmt.Fprintf(&b, "  %-10s %d\n", "Encrypted:", st.Files.Encrypted)
		fmt.Fprintf(&b, "  %-10s %d\n", "Plain:", st.Files.Plain)

		if st.Interrupted() {
			fmt.Fprintf(&b, "  %s An encrypt or rotate run was interrupted\n", ui.Warning.Sprint("⚠"))
			fmt.Fprintf(&b, "  %s Run %s to open every file, or %s to finish it\n", ui.Info.Sprint("→"),
				ui.Code.Sprintf("foldervault vault decrypt %d", v.ID), ui.Code.Sprintf("foldervault vault rotate %d", v.ID))
			continue
		}
		if st.Consistent() {
			fmt.Fprintf(&b, "  %s Files match the vault state\n", ui.Success.Sprint("✓"))
			continue
		}
		if v.Mode == registry.ModeEncrypted {
			fmt.Fprintf(&b, "  %s Plain files in an encrypted vault\n", ui.Warning.Sprint("⚠"))
			fmt.Fprintf(&b, "  %s Run %s and then %s to encrypt them\n", ui.Info.Sprint("→"),
				ui.Code.Sprintf("foldervault vault decrypt %d --force", v.ID), ui.Code.Sprintf("foldervault vault encrypt %d", v.ID))
		} else {
			fmt.Fprintf(&b, "  %s Encrypted files in a decrypted vault\n", ui.Warning.Sprint("⚠"))
			fmt.Fprintf(&b, "  %s Run %s to restore them\n", ui.Info.Sprint("→"), ui.Code.Sprintf("foldervault vault decrypt %d --force", v.ID))
		}
	}
	return b.String()
}
