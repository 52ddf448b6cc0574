package cmd

import (
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/utils"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var encryptFlags transformFlags

func init() {
	encryptFlags.register(encryptCmd, true)
}

// resetEncryptCommandState resets the encrypt command's global state for testing.
func resetEncryptCommandState() {
	encryptFlags.reset()
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <id>",
	Short: "Encrypt the files of a decrypted vault",
	Long: `Encrypts every file in a vault's folder, replacing each one with its
.enc counterpart. The vault must currently be decrypted.

Examples:
  foldervault vault encrypt 3
  foldervault vault encrypt 3 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		spinner, cleanup := startSpinner("Encrypting vault...", verbose, debug)
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

		result, err := workflows.Encrypt(cmd.Context(), env, workflows.EncryptOptions{
			ID:               id,
			TransformOptions: encryptFlags.options(),
		})
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Infof("Encrypt command completed successfully. Encrypted %d files", len(result.Files))

		if result.DryRun {
			finalMessage := ui.Warning.Sprint("[dry-run]") + " Would encrypt " + ui.Highlight.Sprintf("%d", len(result.Files)) + " file(s)"
			if len(result.Files) > 0 {
				finalMessage += ":" + utils.FormatPaths(result.Files)
			}
			spinner.FinalMSG = finalMessage
			return nil
		}

		if len(result.Files) == 0 {
			spinner.FinalMSG = ui.Success.Sprint("✓") + " Vault " + ui.Highlight.Sprint(result.Vault.Title) +
				" is encrypted, there were no files to encrypt"
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Vault " + ui.Highlight.Sprint(result.Vault.Title) + " encrypted successfully!\n" +
			"The following files were encrypted: " + utils.FormatPaths(result.Files)
		return nil
	},
}
