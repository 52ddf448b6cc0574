package cmd

import (
	logger "github.com/PolarWolf314/foldervault/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configVerbose bool
	configDebug   bool
	ConfigLogger  logger.Logger

	// ConfigCmd is the top-level config command.
	ConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage foldervault configuration",
		Long: `Provides commands for managing your foldervault configuration and master key.

Use these commands to:
  - Create your configuration file (config init)
  - Display the active configuration (config show)
  - Discard your master key (config reset-key)

Examples:
  # Create the configuration with a custom key alias
  foldervault config init --alias laptop

  # Show the configuration as JSON
  foldervault config show --json

  # Discard the master key once every vault is decrypted
  foldervault config reset-key`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ConfigLogger = logger.Logger{
				Verbose: configVerbose,
				Debug:   configDebug,
			}
			ConfigLogger.Debugf("Initializing config command with verbose=%t, debug=%t", configVerbose, configDebug)
		},
	}
)

func init() {
	ConfigCmd.PersistentFlags().BoolVarP(&configVerbose, "verbose", "v", false, "enable verbose output")
	ConfigCmd.PersistentFlags().BoolVarP(&configDebug, "debug", "d", false, "enable debug output")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configResetKeyCmd)
}

// ResetConfigState resets all config command global variables to their default values for testing.
func ResetConfigState() {
	configVerbose = false
	configDebug = false
	resetConfigInitState()
	resetConfigShowState()
	resetConfigResetKeyState()
	resetCobraFlagState(ConfigCmd)
}
