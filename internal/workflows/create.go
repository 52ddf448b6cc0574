package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/audit"
	"github.com/PolarWolf314/foldervault/internal/crypto"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/folder"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// CreateOptions configures the create workflow.
type CreateOptions struct {
	// Path is the folder to turn into a vault.
	Path string

	// Title defaults to the folder name.
	Title string

	Description string

	TransformOptions
}

// CreateResult contains the outcome of a create operation.
type CreateResult struct {
	Vault *registry.Vault

	// Files lists the encrypted files, relative to the vault root.
	Files []string

	// MasterKeyCreated is true when this was the first use of foldervault.
	MasterKeyCreated bool
}

// Create registers a folder as a vault and encrypts its contents.
//
// A fresh vault key is generated and stored wrapped under the master key.
// The vault is registered as encrypted before any file is written. If
// encryption stops after some files were written, it stays registered so
// they can be recovered with Decrypt. Otherwise it is unregistered again.
//
// Returns ErrPathInvalid if the folder does not exist, or if it holds .enc
// files that must be renamed or excluded first.
// Returns ErrVaultExists if the folder is, contains or lies inside a vault.
func Create(ctx context.Context, env *Env, opts CreateOptions) (*CreateResult, error) {
	if opts.DryRun {
		return nil, fmt.Errorf("dry run is not supported when creating a vault")
	}

	tree, err := folder.NewDirTree(opts.Path)
	if err != nil {
		return nil, err
	}
	if err := checkOverlap(ctx, env.Registry, tree.Root); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = filepath.Base(tree.Root)
	}

	result := &CreateResult{}
	entry := audit.LogWithUser("create")
	entry.VaultPath = tree.Root
	entry.VaultTitle = title

	created, err := env.withMasterKey(ctx, func(masterKey []byte) error {
		vaultKey, err := crypto.NewKey()
		if err != nil {
			return err
		}
		defer crypto.Zero(vaultKey)

		wrapped, err := crypto.WrapVaultKey(vaultKey, masterKey)
		if err != nil {
			return err
		}

		nonce, err := crypto.NewNonce()
		if err != nil {
			return err
		}

		// The vault is registered with its nonce before the first blob is
		// written, so files of a stopped run stay recoverable.
		v := &registry.Vault{
			Title:       title,
			Description: opts.Description,
			Path:        tree.Root,
			WrappedKey:  wrapped,
			VaultNonce:  nonce[:],
			Mode:        registry.ModeEncrypted,
		}
		if err := env.Registry.Create(ctx, v); err != nil {
			return err
		}
		result.Vault = v
		entry.VaultID = v.ID

		keys := folder.Keys{VaultKey: vaultKey, MasterKey: masterKey, VaultNonce: nonce[:]}
		res, encErr := env.Transformer.EncryptFolderWithNonce(ctx, tree, keys, nil, env.folderOptions(opts.TransformOptions))
		if res != nil {
			result.Files = res.Processed
			entry.FilesCount = len(res.Processed)
			entry.RemovedCount = res.Removed
		}

		if encErr != nil && len(result.Files) == 0 {
			if err := env.Registry.Delete(context.WithoutCancel(ctx), v.ID); err != nil {
				env.Logger.Warnf("Failed to unregister vault %d: %v", v.ID, err)
			}
			result.Vault = nil
		}
		return encErr
	})

	result.MasterKeyCreated = created
	if err != nil {
		entry.Error = err.Error()
	}
	if entry.VaultID != 0 {
		audit.Log(entry)
	}
	if err != nil {
		return result, err
	}

	env.Logger.Infof("Created vault %d at %s", result.Vault.ID, result.Vault.Path)
	return result, nil
}

// checkOverlap rejects a folder that is, contains or lies inside a vault.
func checkOverlap(ctx context.Context, reg registry.Repository, root string) error {
	vaults, err := reg.List(ctx)
	if err != nil {
		return err
	}
	for _, v := range vaults {
		if v.Path == root || isWithin(root, v.Path) || isWithin(v.Path, root) {
			return fmt.Errorf("%w: %s overlaps vault %d (%s)", kerrors.ErrVaultExists, root, v.ID, v.Path)
		}
	}
	return nil
}

// isWithin reports whether path lies strictly inside dir.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && filepath.IsLocal(rel)
}
