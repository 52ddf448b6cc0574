package masterkey

import (
	"sync"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
)

// Session holds an unwrapped master key in locked memory.
type Session struct {
	// RecordID identifies the wrapped record the key belongs to.
	RecordID uuid.UUID
	// Created is true when this session generated the key.
	Created bool

	mu  sync.Mutex
	buf *memguard.LockedBuffer
}

// newSession takes ownership of key and wipes the caller's copy.
func newSession(key []byte, id uuid.UUID, created bool) *Session {
	return &Session{
		RecordID: id,
		Created:  created,
		buf:      memguard.NewBufferFromBytes(key),
	}
}

// Key returns a view of the master key. The slice is only valid until Close
// and must not be retained or modified.
func (s *Session) Key() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil || !s.buf.IsAlive() {
		return nil, kerrors.ErrSessionClosed
	}
	return s.buf.Bytes(), nil
}

// Close wipes the key. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf != nil {
		s.buf.Destroy()
		s.buf = nil
	}
}
