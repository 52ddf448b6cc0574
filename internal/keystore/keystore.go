package keystore

import (
	"context"
	"fmt"
)

// Purpose is the operation a Handle authorizes.
type Purpose int

const (
	// PurposeEncrypt authorizes wrapping a fresh secret.
	PurposeEncrypt Purpose = iota
	// PurposeDecrypt authorizes unwrapping an existing secret.
	PurposeDecrypt
)

func (p Purpose) String() string {
	switch p {
	case PurposeEncrypt:
		return "encrypt"
	case PurposeDecrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// Request describes what an authorization is for. IV is set for decryption
// and binds the handle to one wrapped record.
type Request struct {
	Purpose Purpose
	Alias   string
	IV      []byte
}

// KeyStore wraps and unwraps secrets under a non-exportable key.
type KeyStore interface {
	// Wrap encrypts plaintext under the wrapping key named by the handle's
	// alias, creating the key if it does not exist yet.
	Wrap(ctx context.Context, h *Handle, plaintext []byte) (ciphertext, iv []byte, err error)

	// Unwrap decrypts a ciphertext produced by Wrap.
	Unwrap(ctx context.Context, h *Handle, ciphertext, iv []byte) ([]byte, error)

	// Exists reports whether a wrapping key is present for alias.
	Exists(alias string) (bool, error)

	// Delete removes the wrapping key for alias. Deleting a missing alias is
	// not an error.
	Delete(alias string) error
}

// Authenticator runs the user authentication ceremony. It blocks until the
// user answers, the ceremony fails, or ctx is done.
type Authenticator interface {
	Authorize(ctx context.Context, req Request) (*Handle, error)
}
