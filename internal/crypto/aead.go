package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the length of every symmetric key.
	KeySize = 32

	// NonceSize is the secretbox (XSalsa20) nonce length.
	NonceSize = 24

	// Overhead is the number of bytes Seal adds to a plaintext.
	Overhead = secretbox.Overhead
)

// NewKey returns KeySize bytes from the system CSPRNG.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// NewNonce returns a random secretbox nonce.
func NewNonce() ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// Seal encrypts and authenticates plaintext under key. If nonce is empty a
// random one is generated. The nonce actually used is returned alongside the
// ciphertext; it is not embedded in it.
func Seal(plaintext, key, nonce []byte) ([]byte, [NonceSize]byte, error) {
	var n [NonceSize]byte

	k, err := keyArray(key)
	if err != nil {
		return nil, n, err
	}
	defer Zero(k[:])

	switch {
	case len(nonce) == 0:
		if n, err = NewNonce(); err != nil {
			return nil, n, err
		}
	case len(nonce) != NonceSize:
		return nil, n, fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidNonceLength, NonceSize, len(nonce))
	default:
		copy(n[:], nonce)
	}

	return secretbox.Seal(nil, plaintext, &n, k), n, nil
}

// Open verifies and decrypts ciphertext produced by Seal. It returns
// ErrAuthenticationFailed when the tag does not verify, and no plaintext.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	k, err := keyArray(key)
	if err != nil {
		return nil, err
	}
	defer Zero(k[:])

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidNonceLength, NonceSize, len(nonce))
	}
	var n [NonceSize]byte
	copy(n[:], nonce)

	plaintext, ok := secretbox.Open(nil, ciphertext, &n, k)
	if !ok {
		return nil, kerrors.ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func keyArray(key []byte) (*[KeySize]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidKeyLength, KeySize, len(key))
	}
	var k [KeySize]byte
	copy(k[:], key)
	return &k, nil
}
