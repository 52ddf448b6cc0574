package cmd

import (
	"github.com/PolarWolf314/foldervault/internal/configs"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/utils"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var configResetKeyForce bool

func init() {
	configResetKeyCmd.Flags().BoolVarP(&configResetKeyForce, "force", "f", false, "reset even while vaults are encrypted, losing access to their files")
}

// resetConfigResetKeyState resets the reset-key command's global state for testing.
func resetConfigResetKeyState() {
	configResetKeyForce = false
}

var configResetKeyCmd = &cobra.Command{
	Use:   "reset-key",
	Short: "Discard your master key and forget every vault",
	Long: `Deletes your wrapped master key and the key protecting it, and removes
every vault from the registry. A new master key is created the next time
you create a vault.

This is refused while any vault is encrypted, because its files could never
be decrypted again. Decrypt them first, or pass --force to accept the loss.

Examples:
  foldervault config reset-key
  foldervault config reset-key --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config reset-key command")
		spinner, cleanup := startSpinner("Resetting master key...", configVerbose, configDebug)
		defer cleanup()

		cfg, err := configs.EnsureUserConfig()
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to load user config: %v", err)
		}

		env, err := workflows.Open(cfg, nil, ConfigLogger)
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to open registry: %v", err)
		}
		defer env.Close()

		result, err := workflows.ResetMasterKey(cmd.Context(), env, workflows.ResetOptions{Force: configResetKeyForce})
		if err != nil {
			return reportError(spinner, err)
		}
		ConfigLogger.Infof("Master key reset, %d vault(s) forgotten", len(result.Forgotten))

		finalMessage := ui.SuccessLine("Master key discarded")
		if len(result.Forgotten) > 0 {
			paths := make([]string, 0, len(result.Forgotten))
			for _, v := range result.Forgotten {
				paths = append(paths, v.Path)
			}
			finalMessage += "\nThe following vaults were forgotten: " + utils.FormatPaths(paths)
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
