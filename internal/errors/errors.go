package errors

import (
	"errors"
	"fmt"
)

// Category sentinels. Each specific error below wraps one of these.
var (
	// ErrAuth groups failures of the user authentication ceremony.
	ErrAuth = errors.New("authentication error")

	// ErrCrypto groups encryption and decryption failures.
	ErrCrypto = errors.New("crypto error")

	// ErrIO groups file system failures.
	ErrIO = errors.New("io error")
)

// Authentication errors are surfaced to the caller and never retried automatically.
var (
	// ErrUserCancelled indicates the user dismissed the authentication prompt.
	ErrUserCancelled = fmt.Errorf("%w: user cancelled authentication", ErrAuth)

	// ErrAuthFailed indicates the user could not be authenticated.
	ErrAuthFailed = fmt.Errorf("%w: user authentication failed", ErrAuth)

	// ErrHardwareKeyUnavailable indicates the wrapping key is missing or has been invalidated.
	ErrHardwareKeyUnavailable = fmt.Errorf("%w: wrapping key unavailable", ErrAuth)

	// ErrHandleExpired indicates an authorization handle was used after expiry or more than once.
	ErrHandleExpired = fmt.Errorf("%w: authorization handle expired or already used", ErrAuth)
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrInvalidKeyLength indicates a key is not exactly 32 bytes.
	ErrInvalidKeyLength = fmt.Errorf("%w: invalid key length", ErrCrypto)

	// ErrInvalidNonceLength indicates a nonce has the wrong size for the cipher.
	ErrInvalidNonceLength = fmt.Errorf("%w: invalid nonce length", ErrCrypto)

	// ErrAuthenticationFailed indicates a ciphertext failed tag verification.
	// The key is wrong or the data was tampered with.
	ErrAuthenticationFailed = fmt.Errorf("%w: message authentication failed", ErrCrypto)

	// ErrMalformedBlob indicates an encrypted blob is too short to be valid.
	ErrMalformedBlob = fmt.Errorf("%w: malformed encrypted blob", ErrCrypto)
)

// File errors indicate issues with reading or writing vault contents.
var (
	// ErrReadFailed indicates a file could not be read.
	ErrReadFailed = fmt.Errorf("%w: read failed", ErrIO)

	// ErrWriteFailed indicates a file could not be written.
	ErrWriteFailed = fmt.Errorf("%w: write failed", ErrIO)

	// ErrPathInvalid indicates a path does not exist, is not a directory, or escapes its root.
	ErrPathInvalid = fmt.Errorf("%w: invalid path", ErrIO)
)

// Vault state errors.
var (
	// ErrVaultNotFound indicates no vault is registered under the given id or path.
	ErrVaultNotFound = errors.New("vault not found")

	// ErrVaultExists indicates a vault is already registered for the folder.
	ErrVaultExists = errors.New("a vault is already registered for this folder")

	// ErrVaultAlreadyEncrypted indicates the vault is already in encrypted mode.
	ErrVaultAlreadyEncrypted = errors.New("vault is already encrypted")

	// ErrVaultAlreadyDecrypted indicates the vault is already in decrypted mode.
	ErrVaultAlreadyDecrypted = errors.New("vault is already decrypted")

	// ErrSessionClosed indicates the master key session has been closed and wiped.
	ErrSessionClosed = errors.New("master key session is closed")

	// ErrInvalidRecord indicates a persisted wrapped key record is corrupt.
	ErrInvalidRecord = errors.New("wrapped key record is invalid")
)
