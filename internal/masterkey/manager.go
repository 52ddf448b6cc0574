package masterkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PolarWolf314/foldervault/internal/crypto"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/keystore"
	logger "github.com/PolarWolf314/foldervault/internal/logging"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
)

// State is the manager's position in the key lifecycle.
type State int

const (
	Uninitialized State = iota
	Generating
	Wrapped
	Unwrapping
	Unlocked
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Generating:
		return "generating"
	case Wrapped:
		return "wrapped"
	case Unwrapping:
		return "unwrapping"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config wires a Manager to its collaborators.
type Config struct {
	Records       RecordStore
	KeyStore      keystore.KeyStore
	Authenticator keystore.Authenticator

	// Alias names the wrapping key used when a new master key is created.
	Alias string
	// RecordKey defaults to DefaultRecordKey.
	RecordKey string

	Logger logger.Logger
}

// Manager creates, persists and unlocks the master key. Calls are serialized.
type Manager struct {
	cfg Config

	mu    sync.Mutex
	state State
}

// Result is delivered by AuthenticateAsync.
type Result struct {
	Session *Session
	Err     error
}

func NewManager(cfg Config) *Manager {
	if cfg.RecordKey == "" {
		cfg.RecordKey = DefaultRecordKey
	}
	return &Manager{cfg: cfg}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Initialized reports whether a wrapped master key has been persisted.
func (m *Manager) Initialized() (bool, error) {
	_, err := m.cfg.Records.Load(m.cfg.RecordKey)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNoRecord):
		return false, nil
	default:
		return false, err
	}
}

// Authenticate returns a session holding the master key, generating and
// persisting one on first use. Authentication errors are returned as is and
// never retried. On failure the persisted state is unchanged.
func (m *Manager) Authenticate(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.cfg.Records.Load(m.cfg.RecordKey)
	switch {
	case errors.Is(err, ErrNoRecord):
		return m.generate(ctx)
	case err != nil:
		m.state = Uninitialized
		return nil, err
	default:
		return m.unwrap(ctx, rec)
	}
}

// AuthenticateAsync runs Authenticate in the background. Exactly one Result
// is sent, then the channel is closed.
func (m *Manager) AuthenticateAsync(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		s, err := m.Authenticate(ctx)
		ch <- Result{Session: s, Err: err}
	}()
	return ch
}

func (m *Manager) generate(ctx context.Context) (_ *Session, err error) {
	m.state = Generating
	defer func() {
		if err != nil {
			m.state = Uninitialized
		}
	}()

	alias := m.cfg.Alias
	m.cfg.Logger.Debugf("No master key record found, creating one under alias %s", alias)

	h, err := m.cfg.Authenticator.Authorize(ctx, keystore.Request{Purpose: keystore.PurposeEncrypt, Alias: alias})
	if err != nil {
		return nil, err
	}
	defer h.Discard()

	key, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: generated %d bytes", kerrors.ErrInvalidKeyLength, len(key))
	}

	existed, err := m.cfg.KeyStore.Exists(alias)
	if err != nil {
		return nil, err
	}

	ct, iv, err := m.cfg.KeyStore.Wrap(ctx, h, key)
	if err != nil {
		return nil, fmt.Errorf("wrapping master key: %w", err)
	}

	rec := &WrappedRecord{
		ID:         uuid.New(),
		Alias:      alias,
		Ciphertext: ct,
		IV:         iv,
		CreatedAt:  time.Now().UTC(),
	}
	if err := m.cfg.Records.Save(m.cfg.RecordKey, rec); err != nil {
		if !existed {
			if derr := m.cfg.KeyStore.Delete(alias); derr != nil {
				m.cfg.Logger.Warnf("Failed to remove unused key alias %s: %v", alias, derr)
			}
		}
		return nil, fmt.Errorf("persisting master key: %w", err)
	}

	m.cfg.Logger.Infof("Created master key %s", rec.ID)
	m.state = Wrapped
	return newSession(key, rec.ID, true), nil
}

func (m *Manager) unwrap(ctx context.Context, rec *WrappedRecord) (_ *Session, err error) {
	m.state = Unwrapping
	defer func() {
		if err != nil {
			m.state = Uninitialized
		}
	}()

	m.cfg.Logger.Debugf("Unwrapping master key %s with alias %s", rec.ID, rec.Alias)

	h, err := m.cfg.Authenticator.Authorize(ctx, keystore.Request{
		Purpose: keystore.PurposeDecrypt,
		Alias:   rec.Alias,
		IV:      rec.IV,
	})
	if err != nil {
		return nil, err
	}
	defer h.Discard()

	key, err := m.cfg.KeyStore.Unwrap(ctx, h, rec.Ciphertext, rec.IV)
	if err != nil {
		return nil, fmt.Errorf("unwrapping master key: %w", err)
	}
	if len(key) != crypto.KeySize {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("%w: unwrapped %d bytes", kerrors.ErrInvalidKeyLength, len(key))
	}

	m.state = Unlocked
	return newSession(key, rec.ID, false), nil
}

// Reset forgets the master key: the wrapped record and its wrapping key are
// deleted. Every vault sealed under the old key becomes unrecoverable.
func (m *Manager) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	aliases := []string{m.cfg.Alias}
	rec, err := m.cfg.Records.Load(m.cfg.RecordKey)
	switch {
	case err == nil:
		if rec.Alias != m.cfg.Alias {
			aliases = append(aliases, rec.Alias)
		}
	case errors.Is(err, ErrNoRecord), errors.Is(err, kerrors.ErrInvalidRecord):
	default:
		return err
	}

	if err := m.cfg.Records.Delete(m.cfg.RecordKey); err != nil {
		return err
	}
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		if err := m.cfg.KeyStore.Delete(alias); err != nil {
			return err
		}
	}

	m.state = Uninitialized
	m.cfg.Logger.Infof("Master key reset")
	return nil
}
