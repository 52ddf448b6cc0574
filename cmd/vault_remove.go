package cmd

import (
	"errors"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var removeForce bool

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "remove an encrypted vault, losing access to its files")
}

// resetRemoveCommandState resets the remove command's global state for testing.
func resetRemoveCommandState() {
	removeForce = false
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Forget a vault",
	Long: `Removes a vault from the registry. The files in its folder are left
exactly as they are.

An encrypted vault can only be removed with --force: its key is deleted with
it and the files can never be decrypted again.

Examples:
  foldervault vault remove 3
  foldervault vault remove 3 --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting remove command")
		spinner, cleanup := startSpinner("Removing vault...", verbose, debug)
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

		result, err := workflows.Remove(cmd.Context(), env, workflows.RemoveOptions{ID: id, Force: removeForce})
		if err != nil {
			encrypted := errors.Is(err, kerrors.ErrVaultAlreadyEncrypted)
			err = reportError(spinner, err)
			if encrypted {
				spinner.FinalMSG = ui.EnsureNewline(spinner.FinalMSG) +
					ui.HintLine("Decrypt it first, or pass "+ui.Flag.Sprint("--force")+" to discard its key")
			}
			return err
		}
		Logger.Infof("Remove command completed successfully")

		spinner.FinalMSG = ui.SuccessLine("Vault "+ui.Highlight.Sprint(result.Vault.Title)+" removed") + "\n" +
			ui.HintLine("Files in "+ui.Path.Sprint(result.Vault.Path)+" were left untouched")
		return nil
	},
}
