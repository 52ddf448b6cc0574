package registry

import (
	"context"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	testDB, err := NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	reg, err := NewSQLiteRegistry(testDB)
	require.NoError(t, err)
	return reg
}

func sampleVault(path string) *Vault {
	return &Vault{
		Title:      filepath.Base(path),
		Path:       path,
		WrappedKey: []byte("wrapped-key"),
		VaultNonce: make([]byte, 24),
		Mode:       ModeEncrypted,
	}
}

func TestCreateAndGet(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	v := sampleVault("/home/me/Documents/taxes")
	v.Description = "receipts"
	require.NoError(t, reg.Create(ctx, v))
	assert.NotZero(t, v.ID)
	assert.False(t, v.CreatedAt.IsZero())

	got, err := reg.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Title, got.Title)
	assert.Equal(t, "receipts", got.Description)
	assert.Equal(t, v.Path, got.Path)
	assert.Equal(t, v.WrappedKey, got.WrappedKey)
	assert.Equal(t, v.VaultNonce, got.VaultNonce)
	assert.Equal(t, ModeEncrypted, got.Mode)
	assert.True(t, v.CreatedAt.Equal(got.CreatedAt))

	byPath, err := reg.GetByPath(ctx, v.Path)
	require.NoError(t, err)
	assert.Equal(t, v.ID, byPath.ID)
}

func TestGetMissing(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Get(context.Background(), 42)
	assert.ErrorIs(t, err, kerrors.ErrVaultNotFound)

	_, err = reg.GetByPath(context.Background(), "/nowhere")
	assert.ErrorIs(t, err, kerrors.ErrVaultNotFound)
}

func TestCreateDuplicatePath(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, sampleVault("/data/a")))
	err := reg.Create(ctx, sampleVault("/data/a"))
	assert.ErrorIs(t, err, kerrors.ErrVaultExists)
}

func TestListOrder(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	empty, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, p := range []string{"/data/a", "/data/b", "/data/c"} {
		require.NoError(t, reg.Create(ctx, sampleVault(p)))
	}

	vaults, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, vaults, 3)
	assert.Equal(t, "/data/a", vaults[0].Path)
	assert.Equal(t, "/data/c", vaults[2].Path)
}

func TestSearch(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	taxes := sampleVault("/home/me/taxes")
	taxes.Title = "Tax Returns"
	photos := sampleVault("/home/me/photos")
	photos.Title = "Holiday 100%"
	require.NoError(t, reg.Create(ctx, taxes))
	require.NoError(t, reg.Create(ctx, photos))

	got, err := reg.Search(ctx, "tax")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, taxes.ID, got[0].ID)

	got, err = reg.Search(ctx, "/home/me")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = reg.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, photos.ID, got[0].ID)

	got, err = reg.Search(ctx, "%")
	require.NoError(t, err)
	assert.Len(t, got, 1, "wildcards in the query are literal")

	got, err = reg.Search(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateSealing(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	v := sampleVault("/data/a")
	require.NoError(t, reg.Create(ctx, v))

	next := Sealing{WrappedKey: []byte("rotated"), Nonce: make([]byte, 24)}
	next.Nonce[23] = 1
	prev := v.Current()
	require.NoError(t, reg.UpdateSealing(ctx, v.ID, ModeEncrypted, next, &prev))

	got, err := reg.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, next.WrappedKey, got.WrappedKey)
	assert.Equal(t, next.Nonce, got.VaultNonce)
	require.NotNil(t, got.Previous)
	assert.Equal(t, prev, *got.Previous)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, reg.UpdateSealing(ctx, v.ID, ModeDecrypted, next, nil))
	got, err = reg.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, ModeDecrypted, got.Mode)
	assert.Nil(t, got.Previous, "a nil previous clears the column")

	err = reg.UpdateSealing(ctx, 999, ModeDecrypted, next, nil)
	assert.ErrorIs(t, err, kerrors.ErrVaultNotFound)
}

func TestCreateWithoutPrevious(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	v := sampleVault("/data/a")
	require.NoError(t, reg.Create(ctx, v))

	got, err := reg.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Previous)
}

func TestUpdateSealingRejectsUnknownMode(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	v := sampleVault("/data/a")
	require.NoError(t, reg.Create(ctx, v))

	assert.Error(t, reg.UpdateSealing(ctx, v.ID, Mode("half"), v.Current(), nil))
}

func TestUpgradesOlderSchema(t *testing.T) {
	testDB, err := NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	_, err = testDB.Exec(`
	CREATE TABLE vaults (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL UNIQUE,
		wrapped_key BLOB NOT NULL,
		vault_nonce BLOB NOT NULL,
		mode TEXT NOT NULL CHECK (mode IN ('encrypted', 'decrypted')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	INSERT INTO vaults (title, path, wrapped_key, vault_nonce, mode, created_at, updated_at)
	VALUES ('old', '/data/old', x'01', x'02', 'encrypted', '2024-01-02T03:04:05Z', '2024-01-02T03:04:05Z');`)
	require.NoError(t, err)

	reg, err := NewSQLiteRegistry(testDB)
	require.NoError(t, err)

	ctx := context.Background()
	got, err := reg.GetByPath(ctx, "/data/old")
	require.NoError(t, err)
	assert.Equal(t, "old", got.Title)
	assert.Nil(t, got.Previous)

	prev := got.Current()
	require.NoError(t, reg.UpdateSealing(ctx, got.ID, ModeEncrypted, Sealing{WrappedKey: []byte{3}, Nonce: []byte{4}}, &prev))

	_, err = NewSQLiteRegistry(testDB)
	require.NoError(t, err, "upgrading twice must be a no-op")
}

func TestDelete(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	v := sampleVault("/data/a")
	require.NoError(t, reg.Create(ctx, v))
	require.NoError(t, reg.Delete(ctx, v.ID))

	_, err := reg.Get(ctx, v.ID)
	assert.ErrorIs(t, err, kerrors.ErrVaultNotFound)
	assert.ErrorIs(t, reg.Delete(ctx, v.ID), kerrors.ErrVaultNotFound)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.db")
	ctx := context.Background()

	reg, err := Open(path)
	require.NoError(t, err)
	v := sampleVault("/data/a")
	require.NoError(t, reg.Create(ctx, v))
	require.NoError(t, reg.Close())

	reg, err = Open(path)
	require.NoError(t, err)
	defer reg.Close()

	got, err := reg.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Path, got.Path)
}
