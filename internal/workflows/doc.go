// Package workflows provides high-level orchestration for foldervault
// commands.
//
// Workflows coordinate the registry, the master key manager, the folder
// transform and the audit log to implement complete user-facing features.
// Each workflow handles a single command's business logic, independent of
// CLI concerns like flag parsing, spinners, and output formatting.
//
// # Available Workflows
//
//   - Create: registers a folder as a vault and encrypts it
//   - Encrypt: re-encrypts a decrypted vault under a fresh vault nonce
//   - Decrypt: restores a vault's files
//   - Rotate: re-seals a vault under a new vault key
//   - Remove: forgets a vault without touching its files
//   - List, Search, Status: inspect registered vaults
//   - Log: reads the audit trail
//   - ResetMasterKey: forgets the master key and every vault
//
// # Environment
//
// Every workflow takes an *Env holding its collaborators. Open builds one
// from the user configuration; tests assemble one from in-memory parts.
//
// # Error Handling
//
// Workflows return sentinel errors from internal/errors wrapped with
// context. The CLI layer maps them to messages with errors.Is:
//
//	result, err := workflows.Decrypt(ctx, env, opts)
//	if errors.Is(err, kerrors.ErrUserCancelled) {
//	    // nothing to report
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancellation is honoured during authentication and between files.
package workflows
