package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/foldervault/internal/audit"
	"github.com/PolarWolf314/foldervault/internal/crypto"
	"github.com/PolarWolf314/foldervault/internal/folder"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// RotateOptions configures the rotate workflow.
type RotateOptions struct {
	ID int64

	TransformOptions
}

// RotateResult contains the outcome of a rotate operation.
type RotateResult struct {
	Vault *registry.Vault

	// Files lists the re-sealed blobs.
	Files []string

	DryRun bool
}

// Rotate replaces an encrypted vault's key. Every blob is authenticated before
// any is rewritten under the new key and a fresh nonce.
//
// The new key is recorded, with the old one kept as the previous sealing,
// before the first blob is rewritten, so a stopped rotation leaves every
// blob readable. Running Rotate again first finishes the stopped one.
//
// Returns ErrVaultAlreadyDecrypted if the vault is not encrypted.
func Rotate(ctx context.Context, env *Env, opts RotateOptions) (*RotateResult, error) {
	v, err := env.getVault(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	if v.Mode != registry.ModeEncrypted {
		return nil, errVaultMode(v)
	}

	tree, err := env.openTree(v)
	if err != nil {
		return nil, err
	}

	result := &RotateResult{Vault: v, DryRun: opts.DryRun}
	entry := audit.LogWithUser("rotate")
	entry.VaultID, entry.VaultTitle, entry.VaultPath = v.ID, v.Title, v.Path
	entry.DryRun = opts.DryRun

	err = env.withVaultKeys(ctx, v, func(k *vaultKeys) error {
		newKey, err := crypto.NewKey()
		if err != nil {
			return err
		}
		defer crypto.Zero(newKey)

		wrapped, err := crypto.WrapVaultKey(newKey, k.master)
		if err != nil {
			return err
		}
		nonce, err := crypto.NewNonce()
		if err != nil {
			return err
		}
		next := folder.Keys{VaultKey: newKey, MasterKey: k.master, VaultNonce: nonce[:]}

		fopts := env.folderOptions(opts.TransformOptions)
		fopts.KeepSource = false

		if opts.DryRun {
			res, err := env.Transformer.RekeyWith(ctx, tree, k.all(), next, fopts)
			if res != nil {
				result.Files = res.Processed
				entry.FilesCount = len(res.Processed)
			}
			return err
		}

		if err := finishRotation(ctx, env, tree, v, k, fopts); err != nil {
			return err
		}

		old := v.Current()
		staged := registry.Sealing{WrappedKey: wrapped, Nonce: nonce[:]}
		if err := env.recordSealing(ctx, v, registry.ModeEncrypted, staged, &old); err != nil {
			return err
		}

		res, rekeyErr := env.Transformer.RekeyWith(ctx, tree, []folder.Keys{k.current}, next, fopts)
		if res != nil {
			result.Files = res.Processed
			entry.FilesCount = len(res.Processed)
		}
		switch {
		case rekeyErr != nil && (res == nil || len(res.Processed) == 0):
			if err := env.recordSealing(ctx, v, registry.ModeEncrypted, old, nil); err != nil {
				return errors.Join(rekeyErr, err)
			}
			return rekeyErr
		case rekeyErr != nil:
			return rekeyErr
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

// finishRotation moves the blobs an interrupted run left under the previous
// sealing to the current one and clears the previous sealing.
func finishRotation(ctx context.Context, env *Env, tree folder.Tree, v *registry.Vault, k *vaultKeys, fopts folder.Options) error {
	if k.previous == nil {
		return nil
	}

	res, err := env.Transformer.RekeyWith(ctx, tree, []folder.Keys{*k.previous}, k.current, fopts)
	if err != nil {
		return fmt.Errorf("finishing interrupted run: %w", err)
	}
	if len(res.Processed) > 0 {
		env.Logger.Infof("Finished interrupted run of vault %d, %d file(s) re-encrypted", v.ID, len(res.Processed))
	}
	if err := env.recordSealing(ctx, v, registry.ModeEncrypted, v.Current(), nil); err != nil {
		return err
	}
	k.previous = nil
	return nil
}
