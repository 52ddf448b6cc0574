// Package registry records the folders registered as vaults in a SQLite
// database.
//
// Each row holds the folder's path, its vault key wrapped under the master
// key, the vault nonce of the last encryption run and whether the folder is
// currently encrypted. Title and description are free text.
package registry
