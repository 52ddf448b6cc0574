package crypto

import (
	"fmt"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
)

// EncryptBundle encrypts plaintext with vaultKey, then locks the inner
// nonce and ciphertext under masterKey with a freshly generated vault nonce.
func EncryptBundle(plaintext, vaultKey, masterKey []byte) ([]byte, [NonceSize]byte, error) {
	vaultNonce, err := NewNonce()
	if err != nil {
		return nil, vaultNonce, err
	}

	locked, err := EncryptBundleWithNonce(plaintext, vaultKey, masterKey, vaultNonce[:])
	if err != nil {
		return nil, vaultNonce, err
	}
	return locked, vaultNonce, nil
}

// EncryptBundleWithNonce is EncryptBundle with a caller-supplied vault nonce.
//
// One vault nonce is shared by every file of a folder operation. That reuse
// of (masterKey, vaultNonce) is only safe because each outer plaintext starts
// with a fresh random inner nonce, so no two outer plaintexts repeat. Removing
// or fixing the inner nonce turns this into XSalsa20 keystream reuse.
func EncryptBundleWithNonce(plaintext, vaultKey, masterKey, vaultNonce []byte) ([]byte, error) {
	if len(vaultKey) != KeySize || len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: vault and master keys must be %d bytes", kerrors.ErrInvalidKeyLength, KeySize)
	}

	innerCt, innerNonce, err := Seal(plaintext, vaultKey, nil)
	if err != nil {
		return nil, fmt.Errorf("sealing with vault key: %w", err)
	}

	bundle := make([]byte, 0, NonceSize+len(innerCt))
	bundle = append(bundle, innerNonce[:]...)
	bundle = append(bundle, innerCt...)

	locked, _, err := Seal(bundle, masterKey, vaultNonce)
	if err != nil {
		return nil, fmt.Errorf("locking with master key: %w", err)
	}
	return locked, nil
}

// DecryptBundle reverses EncryptBundle. Both layers are authenticated before
// the plaintext is returned.
func DecryptBundle(lockedBlob, vaultNonce, masterKey, vaultKey []byte) ([]byte, error) {
	unlocked, err := Open(lockedBlob, vaultNonce, masterKey)
	if err != nil {
		return nil, fmt.Errorf("unlocking with master key: %w", err)
	}

	if len(unlocked) < NonceSize {
		return nil, fmt.Errorf("%w: inner bundle is %d bytes, need at least %d", kerrors.ErrMalformedBlob, len(unlocked), NonceSize)
	}

	plaintext, err := Open(unlocked[NonceSize:], unlocked[:NonceSize], vaultKey)
	if err != nil {
		return nil, fmt.Errorf("opening with vault key: %w", err)
	}
	return plaintext, nil
}

// WrapVaultKey seals vaultKey under masterKey. The result is nonce ‖ ciphertext
// and is what the registry stores.
func WrapVaultKey(vaultKey, masterKey []byte) ([]byte, error) {
	if len(vaultKey) != KeySize {
		return nil, fmt.Errorf("%w: vault key is %d bytes", kerrors.ErrInvalidKeyLength, len(vaultKey))
	}

	ct, nonce, err := Seal(vaultKey, masterKey, nil)
	if err != nil {
		return nil, err
	}

	wrapped := make([]byte, 0, NonceSize+len(ct))
	wrapped = append(wrapped, nonce[:]...)
	return append(wrapped, ct...), nil
}

// UnwrapVaultKey opens a key produced by WrapVaultKey.
func UnwrapVaultKey(wrapped, masterKey []byte) ([]byte, error) {
	if len(wrapped) < NonceSize+Overhead {
		return nil, fmt.Errorf("%w: wrapped vault key is %d bytes", kerrors.ErrMalformedBlob, len(wrapped))
	}

	vaultKey, err := Open(wrapped[NonceSize:], wrapped[:NonceSize], masterKey)
	if err != nil {
		return nil, err
	}
	if len(vaultKey) != KeySize {
		Zero(vaultKey)
		return nil, fmt.Errorf("%w: unwrapped vault key is %d bytes", kerrors.ErrInvalidKeyLength, len(vaultKey))
	}
	return vaultKey, nil
}
