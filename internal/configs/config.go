package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/foldervault/internal/keystore"
	"github.com/PolarWolf314/foldervault/internal/utils"

	"github.com/google/uuid"
)

type UserConfig struct {
	User     User           `toml:"user"`
	Storage  Storage        `toml:"storage"`
	KeyStore KeyStoreConfig `toml:"keystore"`
	Vault    VaultDefaults  `toml:"vault"`
}

type User struct {
	UUID string `toml:"installation_uuid"`
}

// Storage paths. Empty values resolve under the data directory.
type Storage struct {
	RegistryPath string `toml:"registry_path"`
	KeystoreDir  string `toml:"keystore_dir"`
}

type KeyStoreConfig struct {
	Alias            string `toml:"alias"`
	ArgonTime        uint32 `toml:"argon_time"`
	ArgonMemoryKiB   uint32 `toml:"argon_memory_kib"`
	ArgonThreads     uint8  `toml:"argon_threads"`
	HandleTTLSeconds int    `toml:"handle_ttl_seconds"`
}

type VaultDefaults struct {
	Exclude    []string `toml:"exclude"`
	KeepSource bool     `toml:"keep_source"`
}

var GlobalUserConfig *UserConfig

// DefaultUserConfig returns the configuration used when no file exists.
func DefaultUserConfig() *UserConfig {
	params := keystore.DefaultParams()
	return &UserConfig{
		KeyStore: KeyStoreConfig{
			Alias:            DefaultKeyAlias(),
			ArgonTime:        params.Time,
			ArgonMemoryKiB:   params.MemoryKiB,
			ArgonThreads:     params.Threads,
			HandleTTLSeconds: int(keystore.DefaultHandleTTL / time.Second),
		},
		Vault: VaultDefaults{
			Exclude: []string{"**/.DS_Store", "**/Thumbs.db"},
		},
	}
}

// DefaultKeyAlias names the wrapping key after this machine.
func DefaultKeyAlias() string {
	hostname, err := utils.GetHostname()
	if err != nil {
		hostname = ""
	}
	return appName + "-" + utils.SanitizeName(hostname)
}

// LoadUserConfig loads the user configuration from the config file. Values
// missing from the file keep their defaults.
func LoadUserConfig() (*UserConfig, error) {
	configPath := UserVaultSettings.ConfigPath()
	config := DefaultUserConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	if err := SaveTOML(UserVaultSettings.ConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}

// GenerateUserUUID generates a new installation UUID.
func GenerateUserUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig ensures the user configuration exists and has an
// installation UUID.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}

	if config.User.UUID == "" {
		config.User.UUID = GenerateUserUUID()
		if err := SaveUserConfig(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// RegistryPath resolves the vault registry database path.
func (c *UserConfig) RegistryPath() string {
	if c.Storage.RegistryPath != "" {
		return c.Storage.RegistryPath
	}
	return filepath.Join(UserVaultSettings.DataDir, "registry.db")
}

// KeystoreDir resolves where wrapping key material lives.
func (c *UserConfig) KeystoreDir() string {
	if c.Storage.KeystoreDir != "" {
		return c.Storage.KeystoreDir
	}
	return filepath.Join(UserVaultSettings.DataDir, "keystore")
}

// KeyAlias returns the configured alias or the machine default.
func (c *UserConfig) KeyAlias() string {
	if c.KeyStore.Alias != "" {
		return c.KeyStore.Alias
	}
	return DefaultKeyAlias()
}

// KDFParams returns the Argon2id parameters for new wrapping keys.
func (c *UserConfig) KDFParams() keystore.Params {
	params := keystore.DefaultParams()
	if c.KeyStore.ArgonTime > 0 {
		params.Time = c.KeyStore.ArgonTime
	}
	if c.KeyStore.ArgonMemoryKiB > 0 {
		params.MemoryKiB = c.KeyStore.ArgonMemoryKiB
	}
	if c.KeyStore.ArgonThreads > 0 {
		params.Threads = c.KeyStore.ArgonThreads
	}
	return params
}

// HandleTTL is how long an authorization stays valid.
func (c *UserConfig) HandleTTL() time.Duration {
	if c.KeyStore.HandleTTLSeconds <= 0 {
		return keystore.DefaultHandleTTL
	}
	return time.Duration(c.KeyStore.HandleTTLSeconds) * time.Second
}
