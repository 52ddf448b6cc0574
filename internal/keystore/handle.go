package keystore

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"

	"github.com/awnumar/memguard"
)

// DefaultHandleTTL is how long a handle stays valid when no TTL is configured.
const DefaultHandleTTL = 30 * time.Second

// Handle is a single-use, expiring proof that the user authenticated for a
// given Request.
type Handle struct {
	Request Request

	mu         sync.Mutex
	credential []byte
	expires    time.Time
	used       bool
}

// NewHandle returns a handle for req carrying a copy of credential. A
// non-positive ttl selects DefaultHandleTTL.
func NewHandle(req Request, credential []byte, ttl time.Duration) *Handle {
	if ttl <= 0 {
		ttl = DefaultHandleTTL
	}
	return newHandleAt(req, credential, time.Now().Add(ttl))
}

func newHandleAt(req Request, credential []byte, expires time.Time) *Handle {
	return &Handle{
		Request:    req,
		credential: bytes.Clone(credential),
		expires:    expires,
	}
}

// Expired reports whether the handle can no longer be redeemed.
func (h *Handle) Expired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.used || time.Now().After(h.expires)
}

// Discard wipes the credential without redeeming it.
func (h *Handle) Discard() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.burn()
}

func (h *Handle) burn() {
	memguard.WipeBytes(h.credential)
	h.credential = nil
	h.used = true
}

// redeem checks the handle against the operation being performed and hands
// over the credential. The caller owns the returned slice and must wipe it.
func (h *Handle) redeem(purpose Purpose, iv []byte) ([]byte, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: no authorization handle", kerrors.ErrAuthFailed)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.used {
		return nil, kerrors.ErrHandleExpired
	}
	if time.Now().After(h.expires) {
		h.burn()
		return nil, kerrors.ErrHandleExpired
	}
	if h.Request.Purpose != purpose {
		return nil, fmt.Errorf("%w: handle authorizes %s, not %s", kerrors.ErrAuthFailed, h.Request.Purpose, purpose)
	}
	if purpose == PurposeDecrypt && !bytes.Equal(h.Request.IV, iv) {
		return nil, fmt.Errorf("%w: handle is bound to a different record", kerrors.ErrAuthFailed)
	}

	credential := h.credential
	h.credential = nil
	h.used = true
	return credential, nil
}
