// Package utils provides shared utility functions for foldervault.
//
// # Filesystem Utilities
//
//   - WriteFileAtomic: writes a file through a temp file and rename
//   - IsDir: reports whether a path is an existing directory
//
// # System Utilities
//
//   - GetUsername, GetHostname
//   - SanitizeName: normalizes free-form names (hostnames) for use as identifiers
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//
// # I/O and Terminal Utilities
//
//   - ReadStdin, ReadPassphraseLine: read a piped passphrase
//   - ReadPassphraseFromTTY: prompts on the controlling terminal without echo
package utils
