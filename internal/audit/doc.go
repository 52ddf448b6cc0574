// Package audit records vault operations in an append-only log.
//
// Every operation that touches a vault or the master key (create, encrypt,
// decrypt, rotate, remove, reset-key) appends one JSON object per line to:
//
//	<data dir>/foldervault/audit.jsonl
//
// Each entry carries a UTC timestamp with microseconds, the local username,
// the installation UUID, the operation name and operation-specific details
// such as the vault and file counts. Key material and file contents are never
// logged.
//
// # Usage
//
//	entry := audit.LogWithUser("encrypt")
//	entry.VaultID = v.ID
//	entry.FilesCount = len(res.Processed)
//	audit.Log(entry)
//
// Logging is best-effort: a failed write never fails the operation.
// ReadEntries skips malformed lines left by interrupted writes.
package audit
