// Package masterkey owns the lifecycle of the installation's master key.
//
// The first successful Authenticate generates a random 32-byte key, wraps it
// through a keystore.KeyStore after the user authenticates, and persists the
// wrapped record. Later calls load the record, authenticate again and unwrap
// it. The plaintext key only ever lives in a Session, backed by mlocked
// memory and wiped on Close.
package masterkey
