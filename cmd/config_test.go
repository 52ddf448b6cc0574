package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/foldervault/internal/configs"
)

func TestConfigInit(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, "already initialized") {
		t.Errorf("Expected no change for an initialized config: %s", output)
	}

	output, err = runCLI(t, "config", "init", "--alias", "My Laptop", "--exclude", "**/*.swp", "--keep-source")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, "User configuration saved") {
		t.Errorf("Unexpected output: %s", output)
	}

	cfg, err := configs.LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig() failed: %v", err)
	}
	if cfg.KeyStore.Alias != "my-laptop" {
		t.Errorf("Expected sanitized alias, got %q", cfg.KeyStore.Alias)
	}
	if len(cfg.Vault.Exclude) != 1 || cfg.Vault.Exclude[0] != "**/*.swp" {
		t.Errorf("Expected exclude to be replaced, got %v", cfg.Vault.Exclude)
	}
	if !cfg.Vault.KeepSource {
		t.Error("Expected keep_source to be set")
	}
}

func TestConfigInitCreatesFile(t *testing.T) {
	setupTestEnvironment(t)
	if err := os.Remove(configs.UserVaultSettings.ConfigPath()); err != nil {
		t.Fatalf("Failed to remove config: %v", err)
	}

	output, err := runCLI(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, "User configuration saved") {
		t.Errorf("Unexpected output: %s", output)
	}

	cfg, err := configs.LoadUserConfig()
	if err != nil {
		t.Fatalf("LoadUserConfig() failed: %v", err)
	}
	if cfg.User.UUID == "" {
		t.Error("Expected an installation UUID")
	}
}

func TestConfigShowJSON(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "config", "show", "--json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var shown resolvedConfig
	if err := json.Unmarshal([]byte(output), &shown); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if shown.KeyAlias != "foldervault-test" {
		t.Errorf("Expected alias foldervault-test, got %q", shown.KeyAlias)
	}
	if shown.RegistryPath != filepath.Join(configs.UserVaultSettings.DataDir, "registry.db") {
		t.Errorf("Unexpected registry path %q", shown.RegistryPath)
	}
	if shown.ArgonMemoryKiB != 1024 {
		t.Errorf("Expected configured Argon2 memory, got %d", shown.ArgonMemoryKiB)
	}
}

func TestConfigShowText(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"User Configuration", "Key alias:", "foldervault-test", "Handle TTL:"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output: %s", want, output)
		}
	}
}

func TestConfigResetKey(t *testing.T) {
	setupTestEnvironment(t)
	folder := createTestFolder(t, map[string]string{"a.txt": "secret"})
	if output, err := runCLI(t, "vault", "create", folder); err != nil {
		t.Fatalf("create failed: %v\nOutput: %s", err, output)
	}

	output, err := runCLI(t, "config", "reset-key")
	if err != nil {
		t.Errorf("Refused reset should not fail the command: %v", err)
	}
	if !strings.Contains(output, "would become unrecoverable") {
		t.Errorf("Expected refusal: %s", output)
	}

	if output, err := runCLI(t, "vault", "decrypt", "1"); err != nil {
		t.Fatalf("decrypt failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, "config", "reset-key")
	if err != nil {
		t.Fatalf("reset-key failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Master key discarded") || !strings.Contains(output, "documents") {
		t.Errorf("Unexpected output: %s", output)
	}

	t.Setenv("FOLDERVAULT_PASSPHRASE", "a brand new passphrase")
	output, err = runCLI(t, "vault", "create", folder)
	if err != nil {
		t.Fatalf("create after reset failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Master key created") {
		t.Errorf("Expected a new master key: %s", output)
	}
}
