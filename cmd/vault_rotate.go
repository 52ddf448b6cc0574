package cmd

import (
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate <id>",
	Short: "Replace the key of an encrypted vault",
	Long: `Re-encrypts every file of an encrypted vault under a new vault key.

All files are authenticated under the old key before any of them is
rewritten.

Examples:
  foldervault vault rotate 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate command")
		spinner, cleanup := startSpinner("Rotating vault key...", verbose, debug)
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

		result, err := workflows.Rotate(cmd.Context(), env, workflows.RotateOptions{ID: id})
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Infof("Rotate command completed successfully. Re-encrypted %d files", len(result.Files))

		spinner.FinalMSG = ui.SuccessLine("Key of vault "+ui.Highlight.Sprint(result.Vault.Title)+" rotated") + "\n" +
			ui.HintLine(ui.Highlight.Sprintf("%d", len(result.Files))+" file(s) re-encrypted under the new key")
		return nil
	},
}
