package masterkey

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *WrappedRecord {
	return &WrappedRecord{
		ID:         uuid.New(),
		Alias:      testAlias,
		Ciphertext: []byte("ciphertext-and-tag"),
		IV:         make([]byte, 12),
		CreatedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileRecordStoreRoundTrip(t *testing.T) {
	store := NewFileRecordStore(t.TempDir())
	rec := sampleRecord()

	_, err := store.Load(DefaultRecordKey)
	assert.ErrorIs(t, err, ErrNoRecord)

	require.NoError(t, store.Save(DefaultRecordKey, rec))

	got, err := store.Load(DefaultRecordKey)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Alias, got.Alias)
	assert.Equal(t, rec.Ciphertext, got.Ciphertext)
	assert.Equal(t, rec.IV, got.IV)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

	info, err := os.Stat(filepath.Join(store.Dir, DefaultRecordKey+".toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileRecordStoreReplaces(t *testing.T) {
	store := NewFileRecordStore(t.TempDir())
	require.NoError(t, store.Save(DefaultRecordKey, sampleRecord()))

	second := sampleRecord()
	require.NoError(t, store.Save(DefaultRecordKey, second))

	got, err := store.Load(DefaultRecordKey)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestFileRecordStoreRejectsCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewFileRecordStore(dir)
	path := filepath.Join(dir, DefaultRecordKey+".toml")

	cases := map[string]string{
		"syntax":      "id = [",
		"bad uuid":    "id = \"nope\"\nalias = \"a\"\nciphertext = \"YQ==\"\niv = \"AAAAAAAAAAAAAAAA\"\n",
		"bad base64":  "id = \"" + uuid.NewString() + "\"\nalias = \"a\"\nciphertext = \"!!\"\niv = \"AAAAAAAAAAAAAAAA\"\n",
		"short iv":    "id = \"" + uuid.NewString() + "\"\nalias = \"a\"\nciphertext = \"YQ==\"\niv = \"AAAA\"\n",
		"unknown key": "id = \"" + uuid.NewString() + "\"\nalias = \"a\"\nciphertext = \"YQ==\"\niv = \"AAAAAAAAAAAAAAAA\"\nversion = 2\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))
			_, err := store.Load(DefaultRecordKey)
			assert.ErrorIs(t, err, kerrors.ErrInvalidRecord)
		})
	}
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	rec := sampleRecord()
	rec.IV = make([]byte, 24)

	assert.ErrorIs(t, NewFileRecordStore(t.TempDir()).Save(DefaultRecordKey, rec), kerrors.ErrInvalidRecord)
	assert.ErrorIs(t, NewMemoryRecordStore().Save(DefaultRecordKey, rec), kerrors.ErrInvalidRecord)
}

func TestFileRecordStoreDelete(t *testing.T) {
	store := NewFileRecordStore(t.TempDir())
	require.NoError(t, store.Save(DefaultRecordKey, sampleRecord()))
	require.NoError(t, store.Delete(DefaultRecordKey))
	require.NoError(t, store.Delete(DefaultRecordKey))

	_, err := store.Load(DefaultRecordKey)
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestFileRecordStoreInvalidKey(t *testing.T) {
	_, err := NewFileRecordStore(t.TempDir()).Load("../escape")
	assert.ErrorIs(t, err, kerrors.ErrPathInvalid)
}

func TestMemoryRecordStoreCopies(t *testing.T) {
	store := NewMemoryRecordStore()
	rec := sampleRecord()
	require.NoError(t, store.Save(DefaultRecordKey, rec))

	rec.Ciphertext[0] = 'X'
	got, err := store.Load(DefaultRecordKey)
	require.NoError(t, err)
	assert.Equal(t, byte('c'), got.Ciphertext[0])
}
