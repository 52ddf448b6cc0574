package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/foldervault/internal/configs"
	"github.com/PolarWolf314/foldervault/internal/keystore"
	logger "github.com/PolarWolf314/foldervault/internal/logging"
)

const testPassphrase = "test passphrase"

// setupTestEnvironment points every user directory at a temporary one,
// writes a configuration with fast key derivation and supplies the
// passphrase through the environment.
func setupTestEnvironment(t *testing.T) {
	t.Helper()

	original := configs.UserVaultSettings
	originalConfig := configs.GlobalUserConfig
	t.Cleanup(func() {
		configs.UserVaultSettings = original
		configs.GlobalUserConfig = originalConfig
	})

	userDir := t.TempDir()
	configs.UserVaultSettings = &configs.UserSettings{
		ConfigDir: filepath.Join(userDir, "config"),
		DataDir:   filepath.Join(userDir, "data"),
		Username:  "testuser",
	}

	cfg := configs.DefaultUserConfig()
	cfg.User.UUID = configs.GenerateUserUUID()
	cfg.KeyStore.Alias = "foldervault-test"
	cfg.KeyStore.ArgonTime = 1
	cfg.KeyStore.ArgonMemoryKiB = 1024
	cfg.KeyStore.ArgonThreads = 1
	if err := configs.SaveUserConfig(cfg); err != nil {
		t.Fatalf("Failed to save test config: %v", err)
	}

	t.Setenv(keystore.PassphraseEnv, testPassphrase)
	t.Setenv("NO_COLOR", "1")
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// runCLI executes foldervault with args on a fresh root command and returns
// everything it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	ResetGlobalState()
	ResetConfigState()
	SetLogger(logger.Logger{})

	return captureOutput(func() error {
		root := NewRootCmd()
		root.SetArgs(args)
		return root.Execute()
	})
}

// withStdin replaces os.Stdin with a pipe holding data for the duration of the test.
func withStdin(t *testing.T, data string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	if _, err := w.WriteString(data); err != nil {
		t.Fatalf("Failed to write stdin: %v", err)
	}
	w.Close()

	original := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = original
		r.Close()
	})
}

// createTestFolder creates a folder with files and returns its path.
func createTestFolder(t *testing.T, files map[string]string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "documents")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return root
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
