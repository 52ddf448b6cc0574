package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/configs"
	"github.com/PolarWolf314/foldervault/internal/ui"

	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

// resolvedConfig is the configuration with every default filled in.
type resolvedConfig struct {
	ConfigPath     string   `json:"config_path"`
	InstallationID string   `json:"installation_uuid"`
	RegistryPath   string   `json:"registry_path"`
	KeystoreDir    string   `json:"keystore_dir"`
	AuditLogPath   string   `json:"audit_log_path"`
	KeyAlias       string   `json:"key_alias"`
	ArgonTime      uint32   `json:"argon_time"`
	ArgonMemoryKiB uint32   `json:"argon_memory_kib"`
	ArgonThreads   uint8    `json:"argon_threads"`
	HandleTTL      string   `json:"handle_ttl"`
	Exclude        []string `json:"exclude"`
	KeepSource     bool     `json:"keep_source"`
}

func resolveConfig(c *configs.UserConfig) resolvedConfig {
	params := c.KDFParams()
	return resolvedConfig{
		ConfigPath:     configs.UserVaultSettings.ConfigPath(),
		InstallationID: c.User.UUID,
		RegistryPath:   c.RegistryPath(),
		KeystoreDir:    c.KeystoreDir(),
		AuditLogPath:   configs.UserVaultSettings.AuditLogPath(),
		KeyAlias:       c.KeyAlias(),
		ArgonTime:      params.Time,
		ArgonMemoryKiB: params.MemoryKiB,
		ArgonThreads:   params.Threads,
		HandleTTL:      c.HandleTTL().String(),
		Exclude:        c.Vault.Exclude,
		KeepSource:     c.Vault.KeepSource,
	}
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays the active configuration, with defaults filled in for every
value the configuration file leaves out.

Examples:
  foldervault config show
  foldervault config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config show command")

		userConfig, err := configs.LoadUserConfig()
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to load user config: %v", err)
		}
		resolved := resolveConfig(userConfig)

		if configShowJSON {
			output, err := json.MarshalIndent(resolved, "", "  ")
			if err != nil {
				return ConfigLogger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		outputConfigText(resolved)
		return nil
	},
}

func outputConfigText(c resolvedConfig) {
	fmt.Println(ui.Info.Sprint("User Configuration") + " (" + ui.Path.Sprint(c.ConfigPath) + "):")
	fmt.Println()
	if c.InstallationID == "" {
		fmt.Printf("  %-16s %s\n", "Installation ID:", ui.Muted.Sprint("not initialized"))
	} else {
		fmt.Printf("  %-16s %s\n", "Installation ID:", ui.Highlight.Sprint(c.InstallationID))
	}
	fmt.Printf("  %-16s %s\n", "Registry:", ui.Path.Sprint(c.RegistryPath))
	fmt.Printf("  %-16s %s\n", "Key store:", ui.Path.Sprint(c.KeystoreDir))
	fmt.Printf("  %-16s %s\n", "Audit log:", ui.Path.Sprint(c.AuditLogPath))
	fmt.Printf("  %-16s %s\n", "Key alias:", ui.Highlight.Sprint(c.KeyAlias))
	fmt.Printf("  %-16s time=%d memory=%dKiB threads=%d\n", "Argon2id:", c.ArgonTime, c.ArgonMemoryKiB, c.ArgonThreads)
	fmt.Printf("  %-16s %s\n", "Handle TTL:", c.HandleTTL)
	fmt.Printf("  %-16s %s\n", "Exclude:", strings.Join(c.Exclude, ", "))
	fmt.Printf("  %-16s %t\n", "Keep source:", c.KeepSource)

	if c.InstallationID == "" {
		fmt.Println()
		fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("foldervault config init") + " to create the file")
	}
}
