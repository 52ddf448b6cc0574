package workflows

import (
	"context"

	"github.com/PolarWolf314/foldervault/internal/audit"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	ID int64

	// Force decrypts a vault recorded as decrypted, to finish an interrupted
	// run or recover files kept by KeepSource.
	Force bool

	TransformOptions
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	Vault *registry.Vault

	// Files lists the decrypted blobs, relative to the vault root.
	Files []string

	// DryRun indicates every blob was authenticated but nothing was written.
	DryRun bool
}

// Decrypt restores the files of an encrypted vault.
//
// Returns ErrVaultNotFound if no vault has the ID.
// Returns ErrVaultAlreadyDecrypted if the vault is decrypted and Force is off.
// Returns ErrAuthenticationFailed if a blob was tampered with; files decrypted
// before it are kept and the vault stays encrypted.
//
// Blobs are opened under the vault's current sealing or, for a vault an
// interrupted run left behind, its previous one.
func Decrypt(ctx context.Context, env *Env, opts DecryptOptions) (*DecryptResult, error) {
	v, err := env.getVault(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	if v.Mode != registry.ModeEncrypted && !opts.Force {
		return nil, errVaultMode(v)
	}

	tree, err := env.openTree(v)
	if err != nil {
		return nil, err
	}

	result := &DecryptResult{Vault: v, DryRun: opts.DryRun}
	entry := audit.LogWithUser("decrypt")
	entry.VaultID, entry.VaultTitle, entry.VaultPath = v.ID, v.Title, v.Path
	entry.DryRun = opts.DryRun

	err = env.withVaultKeys(ctx, v, func(k *vaultKeys) error {
		fopts := env.folderOptions(opts.TransformOptions)
		res, err := env.Transformer.DecryptFolderWith(ctx, tree, k.all(), fopts)
		if res != nil {
			result.Files = res.Processed
			entry.FilesCount, entry.RemovedCount = len(res.Processed), res.Removed
		}
		if err != nil || opts.DryRun {
			return err
		}

		// Kept blobs may still be sealed under the previous sealing.
		previous := v.Previous
		if !fopts.KeepSource {
			previous = nil
		}
		return env.recordSealing(ctx, v, registry.ModeDecrypted, v.Current(), previous)
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
