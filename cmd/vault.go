package cmd

import (
	logger "github.com/PolarWolf314/foldervault/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose         bool
	debug           bool
	passphraseStdin bool
	Logger          logger.Logger

	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Create and manage encrypted folder vaults",
		Long: `Turns folders into vaults whose files are encrypted in place.

Every vault has its own key, protected by a master key that only your
passphrase can unlock. Encrypted files keep their names with an added
.enc suffix.

The passphrase is read from the terminal. For scripts, set
FOLDERVAULT_PASSPHRASE or pipe it with --passphrase-stdin.

Exit codes:
  0  success, or nothing to do for the vault's current state
  1  the command failed
  2  authentication failed
  3  authentication was cancelled`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing vault command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	VaultCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	VaultCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	VaultCmd.PersistentFlags().BoolVar(&passphraseStdin, "passphrase-stdin", false, "read the passphrase from stdin")

	VaultCmd.AddCommand(createCmd)
	VaultCmd.AddCommand(encryptCmd)
	VaultCmd.AddCommand(decryptCmd)
	VaultCmd.AddCommand(rotateCmd)
	VaultCmd.AddCommand(removeCmd)
	VaultCmd.AddCommand(listCmd)
	VaultCmd.AddCommand(searchCmd)
	VaultCmd.AddCommand(statusCmd)
	VaultCmd.AddCommand(logCmd)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	passphraseStdin = false
	resetCreateCommandState()
	resetEncryptCommandState()
	resetDecryptCommandState()
	resetRemoveCommandState()
	resetListCommandState()
	resetLogCommandState()
	resetCobraFlagState(VaultCmd)
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
