package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/utils"

	"github.com/BurntSushi/toml"
	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
)

const (
	// IVSize is the AES-GCM nonce length used for wrapping.
	IVSize = 12

	saltSize   = 16
	wrapKeyLen = 32

	aliasExt = ".toml"
)

// checkLabel is sealed under each alias's wrapping key so a wrong credential
// is detected before any record is touched.
var checkLabel = []byte("foldervault wrapping key check")

// Params are the Argon2id cost parameters for deriving a wrapping key.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams returns the desktop cost profile.
func DefaultParams() Params {
	return Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}
}

// aliasFile is the on-disk material for one alias. The wrapping key itself is
// never stored.
type aliasFile struct {
	Salt      []byte `toml:"-"`
	CheckIV   []byte `toml:"-"`
	Check     []byte `toml:"-"`
	Time      uint32 `toml:"argon_time"`
	MemoryKiB uint32 `toml:"argon_memory_kib"`
	Threads   uint8  `toml:"argon_threads"`

	SaltB64    string    `toml:"salt"`
	CheckIVB64 string    `toml:"check_iv"`
	CheckB64   string    `toml:"check"`
	CreatedAt  time.Time `toml:"created_at"`
}

func (af *aliasFile) encode() {
	af.SaltB64 = base64.StdEncoding.EncodeToString(af.Salt)
	af.CheckIVB64 = base64.StdEncoding.EncodeToString(af.CheckIV)
	af.CheckB64 = base64.StdEncoding.EncodeToString(af.Check)
}

func (af *aliasFile) decode() error {
	var err error
	if af.Salt, err = base64.StdEncoding.DecodeString(af.SaltB64); err != nil {
		return err
	}
	if af.CheckIV, err = base64.StdEncoding.DecodeString(af.CheckIVB64); err != nil {
		return err
	}
	af.Check, err = base64.StdEncoding.DecodeString(af.CheckB64)
	return err
}

// SoftwareKeyStore is a KeyStore whose wrapping keys are re-derived from the
// user's credential on every use.
type SoftwareKeyStore struct {
	dir    string
	params Params
}

// NewSoftwareKeyStore stores alias material under dir. params apply to aliases
// created from now on; existing aliases keep the parameters they were made with.
func NewSoftwareKeyStore(dir string, params Params) *SoftwareKeyStore {
	return &SoftwareKeyStore{dir: dir, params: params}
}

func (s *SoftwareKeyStore) aliasPath(alias string) (string, error) {
	if alias == "" || strings.ContainsAny(alias, `/\`) || alias == "." || alias == ".." {
		return "", fmt.Errorf("%w: invalid key alias %q", kerrors.ErrPathInvalid, alias)
	}
	return filepath.Join(s.dir, alias+aliasExt), nil
}

// Exists reports whether alias material is present.
func (s *SoftwareKeyStore) Exists(alias string) (bool, error) {
	path, err := s.aliasPath(alias)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", kerrors.ErrReadFailed, err)
}

// Delete removes the alias material. Anything wrapped under it becomes
// unrecoverable.
func (s *SoftwareKeyStore) Delete(alias string) error {
	path, err := s.aliasPath(alias)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing key alias: %v", kerrors.ErrWriteFailed, err)
	}
	return nil
}

// Wrap seals plaintext with AES-256-GCM under the alias's wrapping key. The
// alias is created on first use.
func (s *SoftwareKeyStore) Wrap(ctx context.Context, h *Handle, plaintext []byte) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	credential, err := h.redeem(PurposeEncrypt, nil)
	if err != nil {
		return nil, nil, err
	}
	defer memguard.WipeBytes(credential)

	alias := h.Request.Alias
	af, err := s.load(alias)
	switch {
	case errors.Is(err, kerrors.ErrHardwareKeyUnavailable):
		af, err = s.create(alias, credential)
		if err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	}

	gcm, err := af.open(alias, credential)
	if err != nil {
		return nil, nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return gcm.Seal(nil, iv, plaintext, []byte(alias)), iv, nil
}

// Unwrap reverses Wrap. A missing alias yields ErrHardwareKeyUnavailable and a
// wrong credential yields ErrAuthFailed.
func (s *SoftwareKeyStore) Unwrap(ctx context.Context, h *Handle, ciphertext, iv []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: expected %d-byte IV, got %d", kerrors.ErrInvalidNonceLength, IVSize, len(iv))
	}

	credential, err := h.redeem(PurposeDecrypt, iv)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(credential)

	alias := h.Request.Alias
	af, err := s.load(alias)
	if err != nil {
		return nil, err
	}

	gcm, err := af.open(alias, credential)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, []byte(alias))
	if err != nil {
		return nil, kerrors.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func (s *SoftwareKeyStore) load(alias string) (*aliasFile, error) {
	path, err := s.aliasPath(alias)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no key for alias %q", kerrors.ErrHardwareKeyUnavailable, alias)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrReadFailed, err)
	}

	var af aliasFile
	if _, err := toml.Decode(string(data), &af); err != nil {
		return nil, fmt.Errorf("%w: key alias %q is corrupt: %v", kerrors.ErrHardwareKeyUnavailable, alias, err)
	}
	if err := af.decode(); err != nil {
		return nil, fmt.Errorf("%w: key alias %q is corrupt: %v", kerrors.ErrHardwareKeyUnavailable, alias, err)
	}
	if len(af.Salt) != saltSize || len(af.CheckIV) != IVSize || af.Time == 0 || af.Threads == 0 {
		return nil, fmt.Errorf("%w: key alias %q is corrupt", kerrors.ErrHardwareKeyUnavailable, alias)
	}
	return &af, nil
}

func (s *SoftwareKeyStore) create(alias string, credential []byte) (*aliasFile, error) {
	path, err := s.aliasPath(alias)
	if err != nil {
		return nil, err
	}

	af := &aliasFile{
		Salt:      make([]byte, saltSize),
		Time:      s.params.Time,
		MemoryKiB: s.params.MemoryKiB,
		Threads:   s.params.Threads,
		CheckIV:   make([]byte, IVSize),
		CreatedAt: time.Now().UTC(),
	}
	if af.Time == 0 || af.Threads == 0 {
		d := DefaultParams()
		af.Time, af.MemoryKiB, af.Threads = d.Time, d.MemoryKiB, d.Threads
	}
	if _, err := io.ReadFull(rand.Reader, af.Salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, af.CheckIV); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	gcm, err := af.cipher(credential)
	if err != nil {
		return nil, err
	}
	af.Check = gcm.Seal(nil, af.CheckIV, checkLabel, []byte(alias))
	af.encode()

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(af); err != nil {
		return nil, fmt.Errorf("failed to encode key alias: %w", err)
	}
	if err := utils.WriteFileAtomic(path, []byte(buf.String()), 0600); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWriteFailed, err)
	}
	return af, nil
}

func (af *aliasFile) cipher(credential []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(credential, af.Salt, af.Time, af.MemoryKiB, af.Threads, wrapKeyLen)
	defer memguard.WipeBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// open derives the wrapping key and verifies the credential against the
// stored check value.
func (af *aliasFile) open(alias string, credential []byte) (cipher.AEAD, error) {
	gcm, err := af.cipher(credential)
	if err != nil {
		return nil, err
	}
	label, err := gcm.Open(nil, af.CheckIV, af.Check, []byte(alias))
	if err != nil || subtle.ConstantTimeCompare(label, checkLabel) != 1 {
		return nil, kerrors.ErrAuthFailed
	}
	return gcm, nil
}
