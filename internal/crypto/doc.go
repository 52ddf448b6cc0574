// Package crypto implements the symmetric primitives of a folder vault.
//
// # AEAD
//
// Seal and Open wrap NaCl secretbox (XSalsa20-Poly1305): 32-byte keys,
// 24-byte nonces and a 16-byte Poly1305 tag. Open verifies the tag before
// anything is returned, so a wrong key or a flipped bit never yields
// plaintext. Callers own nonce uniqueness.
//
// # Vault bundles
//
// Files are encrypted twice. The inner layer uses the vault key and a fresh
// random nonce per file. The inner nonce and ciphertext are then sealed again
// under the master key with the vault nonce:
//
//	lockedBlob = secretbox(innerNonce ‖ secretbox(plaintext, vaultKey, innerNonce), masterKey, vaultNonce)
//
// Reaching plaintext therefore always needs both keys. Vault keys themselves
// are persisted wrapped under the master key (WrapVaultKey).
package crypto
