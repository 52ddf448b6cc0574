package cmd

import (
	"path/filepath"

	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/utils"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	createTitle       string
	createDescription string
	createFlags       transformFlags
)

func init() {
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "vault title (defaults to the folder name)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "free-form description")
	createFlags.register(createCmd, false)
}

// resetCreateCommandState resets the create command's global state for testing.
func resetCreateCommandState() {
	createTitle = ""
	createDescription = ""
	createFlags.reset()
}

var createCmd = &cobra.Command{
	Use:   "create <folder>",
	Short: "Turn a folder into an encrypted vault",
	Long: `Registers a folder as a vault and encrypts every file in it.

The first vault you create also creates your master key; you will be
asked to choose a passphrase and to confirm it.

Examples:
  foldervault vault create ~/Documents/taxes
  foldervault vault create ./photos --title "Family photos" --exclude "**/*.tmp"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting create command")
		spinner, cleanup := startSpinner("Creating vault...", verbose, debug)
		defer cleanup()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to resolve %s: %v", args[0], err)
		}
		Logger.Debugf("Vault folder: %s", path)

		env, err := openEnv(spinner)
		if err != nil {
			return reportError(spinner, err)
		}
		defer env.Close()

		result, err := workflows.Create(cmd.Context(), env, workflows.CreateOptions{
			Path:             path,
			Title:            createTitle,
			Description:      createDescription,
			TransformOptions: createFlags.options(),
		})
		if err != nil {
			if result != nil && result.Vault != nil {
				Logger.WarnfAlways("Vault %d was registered but not every file was encrypted", result.Vault.ID)
			}
			return reportError(spinner, err)
		}
		Logger.Infof("Create command completed successfully. Encrypted %d files", len(result.Files))

		finalMessage := ""
		if result.MasterKeyCreated {
			finalMessage += ui.Success.Sprint("✓") + " Master key created and protected by your passphrase\n"
		}
		finalMessage += ui.Success.Sprint("✓") + " Vault " + ui.Highlight.Sprint(result.Vault.Title) +
			" created with ID " + ui.Highlight.Sprintf("%d", result.Vault.ID) + "\n"
		if len(result.Files) > 0 {
			finalMessage += "The following files were encrypted: " + utils.FormatPaths(result.Files)
		} else {
			finalMessage += ui.Warning.Sprint("⚠") + " The folder has no files to encrypt yet\n"
		}
		finalMessage += ui.Info.Sprint("→") + " Run " + ui.Code.Sprintf("foldervault vault decrypt %d", result.Vault.ID) + " to get them back"

		spinner.FinalMSG = finalMessage
		return nil
	},
}
