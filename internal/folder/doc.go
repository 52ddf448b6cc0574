// Package folder encrypts and decrypts every regular file under a vault
// directory in place.
//
// Encryption turns name into name.enc holding a two-layer bundle (see
// internal/crypto). All files of one run share a vault nonce, which the
// caller persists with the vault record and must present to decrypt.
//
// File access goes through the Tree interface; DirTree is the local
// filesystem implementation.
//
// Selection:
//
//   - Encryption turns plain files into blobs. A file already ending in
//     .enc must be a blob of the vault: it is skipped, or resealed when it
//     came from an earlier run. Any other .enc file refuses the run before
//     anything is written.
//   - Decryption only considers files that end in .enc.
//   - Options.Include and Options.Exclude take doublestar globs matched
//     against slash-separated paths relative to the vault root.
//
// Any per-file failure aborts the run. Files finished before the failure
// stay transformed; the returned Result lists them. A run that reseals a
// vault can be interrupted with blobs under two sets of Keys, so
// DecryptFolderWith and RekeyWith accept several.
package folder
