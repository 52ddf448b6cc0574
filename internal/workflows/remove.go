package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/foldervault/internal/audit"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// RemoveOptions configures the remove workflow.
type RemoveOptions struct {
	ID int64

	// Force removes an encrypted vault, discarding the only copy of its key.
	Force bool
}

// RemoveResult contains the outcome of a remove operation.
type RemoveResult struct {
	Vault *registry.Vault
}

// Remove forgets a vault. Its files are left as they are.
//
// Returns ErrVaultAlreadyEncrypted if the vault is encrypted and Force is off,
// since its files could never be decrypted again.
func Remove(ctx context.Context, env *Env, opts RemoveOptions) (*RemoveResult, error) {
	v, err := env.getVault(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	if v.Mode == registry.ModeEncrypted && !opts.Force {
		return nil, fmt.Errorf("%w: decrypt it first or force removal", errVaultMode(v))
	}

	if err := env.Registry.Delete(ctx, v.ID); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser("remove")
	entry.VaultID, entry.VaultTitle, entry.VaultPath = v.ID, v.Title, v.Path
	audit.Log(entry)

	return &RemoveResult{Vault: v}, nil
}
