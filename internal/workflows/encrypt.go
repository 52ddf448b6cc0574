package workflows

import (
	"context"
	"errors"

	"github.com/PolarWolf314/foldervault/internal/audit"
	"github.com/PolarWolf314/foldervault/internal/crypto"
	"github.com/PolarWolf314/foldervault/internal/folder"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	ID int64

	TransformOptions
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	Vault *registry.Vault

	// Files lists the encrypted files, relative to the vault root.
	Files []string

	// Skipped lists files left alone.
	Skipped []string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Encrypt seals a decrypted vault again under its vault key and a fresh
// vault nonce.
//
// The new nonce is recorded, with the old one kept as the previous sealing,
// before the first blob is written. A run that stops early therefore leaves
// a vault that Decrypt can open in full. Blobs left by an earlier
// interrupted run are resealed under the new nonce.
//
// Returns ErrVaultNotFound if no vault has the ID.
// Returns ErrVaultAlreadyEncrypted if the vault is already encrypted.
// Returns ErrPathInvalid if the folder holds .enc files this vault did not
// write.
func Encrypt(ctx context.Context, env *Env, opts EncryptOptions) (*EncryptResult, error) {
	v, err := env.getVault(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	if v.Mode != registry.ModeDecrypted {
		return nil, errVaultMode(v)
	}

	tree, err := env.openTree(v)
	if err != nil {
		return nil, err
	}

	result := &EncryptResult{Vault: v, DryRun: opts.DryRun}
	entry := audit.LogWithUser("encrypt")
	entry.VaultID, entry.VaultTitle, entry.VaultPath = v.ID, v.Title, v.Path
	entry.DryRun = opts.DryRun

	err = env.withVaultKeys(ctx, v, func(k *vaultKeys) error {
		nonce, err := crypto.NewNonce()
		if err != nil {
			return err
		}
		next := folder.Keys{VaultKey: k.current.VaultKey, MasterKey: k.master, VaultNonce: nonce[:]}
		earlier := k.all()

		old, oldPrevious := v.Current(), v.Previous
		staged := registry.Sealing{WrappedKey: v.WrappedKey, Nonce: nonce[:]}
		if !opts.DryRun {
			if err := env.recordSealing(ctx, v, registry.ModeEncrypted, staged, &old); err != nil {
				return err
			}
		}

		res, encErr := env.Transformer.EncryptFolderWithNonce(ctx, tree, next, earlier, env.folderOptions(opts.TransformOptions))
		if res != nil {
			result.Files, result.Skipped = res.Processed, res.Skipped
			entry.FilesCount, entry.RemovedCount = len(res.Processed), res.Removed
		}

		switch {
		case opts.DryRun:
			return encErr
		case encErr != nil && (res == nil || len(res.Processed)+len(res.Resealed) == 0):
			if err := env.recordSealing(ctx, v, registry.ModeDecrypted, old, oldPrevious); err != nil {
				return errors.Join(encErr, err)
			}
			return encErr
		case encErr != nil:
			// Blobs under both sealings exist, keep the staged state.
			return encErr
		}
		return env.recordSealing(ctx, v, registry.ModeEncrypted, staged, nil)
	})

	if err != nil {
		entry.Error = err.Error()
	}
	audit.Log(entry)
	if err != nil {
		return result, err
	}
	return result, nil
}
