package cmd

import (
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/utils"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	decryptForce bool
	decryptFlags transformFlags
)

func init() {
	decryptCmd.Flags().BoolVarP(&decryptForce, "force", "f", false, "decrypt even if the vault is recorded as decrypted")
	decryptFlags.register(decryptCmd, true)
}

// resetDecryptCommandState resets the decrypt command's global state for testing.
func resetDecryptCommandState() {
	decryptForce = false
	decryptFlags.reset()
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <id>",
	Short: "Decrypt the files of an encrypted vault",
	Long: `Restores every .enc file in a vault's folder to its original name and
contents. Each file is authenticated before anything is written.

Use --force to finish a decrypt that was interrupted, or to restore files
kept with --keep-source. Use --dry-run to check that every file can be
decrypted without writing anything.

Examples:
  foldervault vault decrypt 3
  foldervault vault decrypt 3 --dry-run
  foldervault vault decrypt 3 --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		spinner, cleanup := startSpinner("Decrypting vault...", verbose, debug)
		defer cleanup()

		id, err := parseVaultID(args[0])
		if err != nil {
			spinner.FinalMSG = ui.ErrorLine(err.Error())
			return err
		}

		env, err := openEnv(spinner)
		if err != nil {
			return reportError(spinner, err)
		}
		defer env.Close()

		result, err := workflows.Decrypt(cmd.Context(), env, workflows.DecryptOptions{
			ID:               id,
			Force:            decryptForce,
			TransformOptions: decryptFlags.options(),
		})
		if err != nil {
			if result != nil && len(result.Files) > 0 {
				Logger.WarnfAlways("%d file(s) were decrypted before the failure", len(result.Files))
			}
			return reportError(spinner, err)
		}
		Logger.Infof("Decrypt command completed successfully. Decrypted %d files", len(result.Files))

		if result.DryRun {
			finalMessage := ui.Warning.Sprint("[dry-run]") + " All " + ui.Highlight.Sprintf("%d", len(result.Files)) +
				" file(s) authenticated, would decrypt"
			if len(result.Files) > 0 {
				finalMessage += ":" + utils.FormatPaths(result.Files)
			}
			spinner.FinalMSG = finalMessage
			return nil
		}

		finalMessage := ui.Success.Sprint("✓") + " Vault " + ui.Highlight.Sprint(result.Vault.Title) + " decrypted successfully!\n"
		if len(result.Files) > 0 {
			finalMessage += "The following files were restored: " + utils.FormatPaths(result.Files)
		}
		finalMessage += ui.Info.Sprint("→") + " Run " + ui.Code.Sprintf("foldervault vault encrypt %d", result.Vault.ID) + " when you are done"
		spinner.FinalMSG = finalMessage
		return nil
	},
}
