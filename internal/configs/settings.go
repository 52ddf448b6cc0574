package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/foldervault/internal/utils"
)

const appName = "foldervault"

// UserSettings holds the per-user directories foldervault reads and writes.
type UserSettings struct {
	ConfigDir string
	DataDir   string
	Username  string
}

// ConfigPath is the user config file.
func (s *UserSettings) ConfigPath() string {
	return filepath.Join(s.ConfigDir, "config.toml")
}

// AuditLogPath is the append-only audit log.
func (s *UserSettings) AuditLogPath() string {
	return filepath.Join(s.DataDir, "audit.jsonl")
}

// RecordsDir holds the wrapped master key record.
func (s *UserSettings) RecordsDir() string {
	return filepath.Join(s.DataDir, "keys")
}

var UserVaultSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		username = "unknown"
	}

	UserVaultSettings = &UserSettings{
		ConfigDir: filepath.Join(configDir, appName),
		DataDir:   filepath.Join(dataDir, appName),
		Username:  username,
	}
}
