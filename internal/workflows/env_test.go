package workflows

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/foldervault/internal/configs"
	"github.com/PolarWolf314/foldervault/internal/folder"
	"github.com/PolarWolf314/foldervault/internal/keystore"
	"github.com/PolarWolf314/foldervault/internal/masterkey"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

const testPassphrase = "correct horse battery staple"

type testEnv struct {
	*Env
	records *masterkey.MemoryRecordStore
	store   *keystore.SoftwareKeyStore
}

// newTestEnv wires an Env from in-memory parts and points the user
// directories (audit log, config) at temporary ones.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	old := *configs.UserVaultSettings
	configs.UserVaultSettings.ConfigDir = t.TempDir()
	configs.UserVaultSettings.DataDir = t.TempDir()
	t.Cleanup(func() { *configs.UserVaultSettings = old })

	db, err := registry.NewInMemoryDB()
	if err != nil {
		t.Fatalf("NewInMemoryDB() failed: %v", err)
	}
	reg, err := registry.NewSQLiteRegistry(db)
	if err != nil {
		t.Fatalf("NewSQLiteRegistry() failed: %v", err)
	}

	te := &testEnv{
		records: masterkey.NewMemoryRecordStore(),
		store:   keystore.NewSoftwareKeyStore(t.TempDir(), keystore.Params{Time: 1, MemoryKiB: 1024, Threads: 1}),
	}
	te.Env = &Env{
		Config:      configs.DefaultUserConfig(),
		Registry:    reg,
		Transformer: &folder.Transformer{},
		closer:      db,
	}
	te.useAuthenticator(&keystore.StaticAuthenticator{Credential: []byte(testPassphrase)})
	t.Cleanup(func() { te.Close() })
	return te
}

// useAuthenticator swaps the authenticator, keeping the persisted key state.
func (te *testEnv) useAuthenticator(auth keystore.Authenticator) {
	te.MasterKeys = masterkey.NewManager(masterkey.Config{
		Records:       te.records,
		KeyStore:      te.store,
		Authenticator: auth,
		Alias:         "foldervault-test",
	})
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
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

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
