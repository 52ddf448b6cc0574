// Package keystore guards the master key behind a user authentication
// ceremony.
//
// A KeyStore holds wrapping keys addressed by alias and never exposes them.
// Every Wrap or Unwrap must present a Handle obtained from an Authenticator;
// handles are bound to one purpose and alias, expire after a short TTL, and
// can be redeemed exactly once.
//
// SoftwareKeyStore emulates a hardware-backed store on platforms without one:
// the wrapping key is derived with Argon2id from the user's credential and a
// random per-alias salt, and is used for AES-256-GCM. Only the salt, the KDF
// parameters and a credential check value are written to disk.
//
// Usage:
//
//	store := keystore.NewSoftwareKeyStore(dir, keystore.DefaultParams())
//	auth := &keystore.PassphraseAuthenticator{}
//	h, err := auth.Authorize(ctx, keystore.Request{Purpose: keystore.PurposeEncrypt, Alias: alias})
//	ct, iv, err := store.Wrap(ctx, h, masterKey)
package keystore
