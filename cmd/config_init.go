package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/configs"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/utils"

	"github.com/spf13/cobra"
)

var (
	configInitAlias      string
	configInitExclude    []string
	configInitKeepSource bool
)

func init() {
	configInitCmd.Flags().StringVar(&configInitAlias, "alias", "", "name of the key that protects your master key")
	configInitCmd.Flags().StringArrayVar(&configInitExclude, "exclude", nil, "default glob of files never encrypted (repeatable, replaces the defaults)")
	configInitCmd.Flags().BoolVar(&configInitKeepSource, "keep-source", false, "keep originals by default")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitAlias = ""
	configInitExclude = nil
	configInitKeepSource = false
}

// RunConfigInit creates or updates the user configuration and reports
// whether anything was written.
func RunConfigInit(cmd *cobra.Command) (bool, error) {
	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return false, fmt.Errorf("failed to load user config: %w", err)
	}

	changed := false
	if userConfig.User.UUID == "" {
		userConfig.User.UUID = configs.GenerateUserUUID()
		changed = true
	}

	if cmd.Flags().Changed("alias") {
		if strings.TrimSpace(configInitAlias) == "" {
			return false, fmt.Errorf("invalid key alias: %q", configInitAlias)
		}
		userConfig.KeyStore.Alias = utils.SanitizeName(configInitAlias)
		changed = true
	}
	if cmd.Flags().Changed("exclude") {
		userConfig.Vault.Exclude = configInitExclude
		changed = true
	}
	if cmd.Flags().Changed("keep-source") {
		userConfig.Vault.KeepSource = configInitKeepSource
		changed = true
	}

	if !changed {
		return false, nil
	}

	ConfigLogger.Debugf("Saving user config to %s", configs.UserVaultSettings.ConfigPath())
	if err := configs.SaveUserConfig(userConfig); err != nil {
		return false, err
	}
	configs.GlobalUserConfig = userConfig
	return true, nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize your user configuration",
	Long: `Creates or updates your configuration file with an installation ID and
your defaults. Running it again without flags leaves the file unchanged.

The configuration lives in your user config directory, for example
~/.config/foldervault/config.toml.

Examples:
  # Create the configuration with defaults
  foldervault config init

  # Name the key protecting your master key
  foldervault config init --alias workstation

  # Never encrypt editor swap files
  foldervault config init --exclude "**/*.swp" --exclude "**/.DS_Store"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config init command")

		written, err := RunConfigInit(cmd)
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to initialize config: %v", err)
		}

		path := configs.UserVaultSettings.ConfigPath()
		if !written {
			fmt.Println(ui.SuccessLine("Configuration already initialized at " + ui.Path.Sprint(path)))
			fmt.Println(ui.HintLine("Run " + ui.Code.Sprint("foldervault config show") + " to see it"))
			return nil
		}

		fmt.Println(ui.SuccessLine("User configuration saved to " + ui.Path.Sprint(path)))
		return nil
	},
}
