package workflows

import (
	"context"
	"errors"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/folder"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// VaultStatus describes one vault and the files found in its folder.
type VaultStatus struct {
	Vault *registry.Vault

	// Files counts files by state. Nil when the folder is missing.
	Files *folder.Summary

	// Missing is true when the vault's folder no longer exists.
	Missing bool
}

// Consistent reports whether the files on disk match the recorded mode.
func (s VaultStatus) Consistent() bool {
	if s.Missing || s.Files == nil {
		return false
	}
	if s.Vault.Mode == registry.ModeEncrypted {
		return s.Files.Plain == 0
	}
	return s.Files.Encrypted == 0
}

// Interrupted reports whether an encrypt or rotate run stopped before it
// finished, leaving blobs under two sealings.
func (s VaultStatus) Interrupted() bool {
	return s.Vault.Mode == registry.ModeEncrypted && s.Vault.Previous != nil
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	// ID selects one vault. Zero reports on every vault.
	ID int64
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	Vaults []VaultStatus
}

// Status counts encrypted and plain files for one or all vaults. It needs no
// authentication.
func Status(ctx context.Context, env *Env, opts StatusOptions) (*StatusResult, error) {
	var vaults []*registry.Vault
	if opts.ID != 0 {
		v, err := env.getVault(ctx, opts.ID)
		if err != nil {
			return nil, err
		}
		vaults = []*registry.Vault{v}
	} else {
		var err error
		if vaults, err = env.Registry.List(ctx); err != nil {
			return nil, err
		}
	}

	fopts := env.folderOptions(TransformOptions{})
	result := &StatusResult{}
	for _, v := range vaults {
		st := VaultStatus{Vault: v}

		tree, err := env.openTree(v)
		switch {
		case errors.Is(err, kerrors.ErrPathInvalid):
			st.Missing = true
		case err != nil:
			return nil, err
		default:
			if st.Files, err = folder.Inventory(ctx, tree, fopts); err != nil {
				return nil, err
			}
		}

		result.Vaults = append(result.Vaults, st)
	}
	return result, nil
}
