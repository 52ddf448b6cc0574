package masterkey

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PolarWolf314/foldervault/internal/configs"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/keystore"

	"github.com/google/uuid"
)

// DefaultRecordKey is the store key of the installation's master key record.
const DefaultRecordKey = "master"

// ErrNoRecord is returned by RecordStore.Load when nothing is stored.
var ErrNoRecord = errors.New("no wrapped key record")

// WrappedRecord is the persisted, wrapped form of the master key.
type WrappedRecord struct {
	ID         uuid.UUID
	Alias      string
	Ciphertext []byte
	IV         []byte
	CreatedAt  time.Time
}

// Validate checks the record's structural invariants.
func (r *WrappedRecord) Validate() error {
	if r == nil {
		return kerrors.ErrInvalidRecord
	}
	if len(r.IV) != keystore.IVSize {
		return fmt.Errorf("%w: IV must be %d bytes, got %d", kerrors.ErrInvalidRecord, keystore.IVSize, len(r.IV))
	}
	if len(r.Ciphertext) == 0 {
		return fmt.Errorf("%w: empty ciphertext", kerrors.ErrInvalidRecord)
	}
	if r.Alias == "" {
		return fmt.Errorf("%w: missing key alias", kerrors.ErrInvalidRecord)
	}
	return nil
}

func (r *WrappedRecord) clone() *WrappedRecord {
	c := *r
	c.Ciphertext = append([]byte(nil), r.Ciphertext...)
	c.IV = append([]byte(nil), r.IV...)
	return &c
}

// RecordStore persists at most one WrappedRecord per key.
type RecordStore interface {
	// Load returns ErrNoRecord when key holds nothing.
	Load(key string) (*WrappedRecord, error)
	// Save replaces the record under key atomically.
	Save(key string, rec *WrappedRecord) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(key string) error
}

// recordFile is the TOML layout of a WrappedRecord.
type recordFile struct {
	ID         string    `toml:"id"`
	Alias      string    `toml:"alias"`
	Ciphertext string    `toml:"ciphertext"`
	IV         string    `toml:"iv"`
	CreatedAt  time.Time `toml:"created_at"`
}

// FileRecordStore keeps each record in <Dir>/<key>.toml.
type FileRecordStore struct {
	Dir string
}

// NewFileRecordStore returns a store rooted at dir.
func NewFileRecordStore(dir string) *FileRecordStore {
	return &FileRecordStore{Dir: dir}
}

func (s *FileRecordStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: invalid record key %q", kerrors.ErrPathInvalid, key)
	}
	return filepath.Join(s.Dir, key+".toml"), nil
}

func (s *FileRecordStore) Load(key string) (*WrappedRecord, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	var rf recordFile
	if err := configs.LoadTOMLStrict(path, &rf); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidRecord, err)
	}

	rec := &WrappedRecord{Alias: rf.Alias, CreatedAt: rf.CreatedAt}
	if rec.ID, err = uuid.Parse(rf.ID); err != nil {
		return nil, fmt.Errorf("%w: bad id: %v", kerrors.ErrInvalidRecord, err)
	}
	if rec.Ciphertext, err = base64.StdEncoding.DecodeString(rf.Ciphertext); err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext: %v", kerrors.ErrInvalidRecord, err)
	}
	if rec.IV, err = base64.StdEncoding.DecodeString(rf.IV); err != nil {
		return nil, fmt.Errorf("%w: bad iv: %v", kerrors.ErrInvalidRecord, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileRecordStore) Save(key string, rec *WrappedRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	rf := recordFile{
		ID:         rec.ID.String(),
		Alias:      rec.Alias,
		Ciphertext: base64.StdEncoding.EncodeToString(rec.Ciphertext),
		IV:         base64.StdEncoding.EncodeToString(rec.IV),
		CreatedAt:  rec.CreatedAt.UTC(),
	}
	if err := configs.SaveTOML(path, rf); err != nil {
		return fmt.Errorf("%w: saving key record: %v", kerrors.ErrWriteFailed, err)
	}
	return nil
}

func (s *FileRecordStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing key record: %v", kerrors.ErrWriteFailed, err)
	}
	return nil
}

// MemoryRecordStore is an in-process RecordStore.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[string]*WrappedRecord
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]*WrappedRecord)}
}

func (s *MemoryRecordStore) Load(key string) (*WrappedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, ErrNoRecord
	}
	return rec.clone(), nil
}

func (s *MemoryRecordStore) Save(key string, rec *WrappedRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec.clone()
	return nil
}

func (s *MemoryRecordStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryRecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
