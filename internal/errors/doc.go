// Package errors provides typed error values for foldervault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Every specific error wraps exactly one category sentinel, so callers can
// test either the category or the specific condition:
//
//   - ErrAuth: the authentication ceremony did not yield a usable key
//     (ErrUserCancelled, ErrAuthFailed, ErrHardwareKeyUnavailable, ErrHandleExpired)
//   - ErrCrypto: encryption or decryption failures
//     (ErrInvalidKeyLength, ErrInvalidNonceLength, ErrAuthenticationFailed, ErrMalformedBlob)
//   - ErrIO: file system failures (ErrReadFailed, ErrWriteFailed, ErrPathInvalid)
//
// Vault state errors (ErrVaultNotFound, ErrVaultAlreadyEncrypted, ...) stand
// on their own.
//
// # Usage
//
// Return errors from internal packages:
//
//	if len(key) != 32 {
//	    return nil, errors.ErrInvalidKeyLength
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrUserCancelled) {
//	    // Show user-friendly message
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %s: %v", errors.ErrReadFailed, relPath, err)
package errors
