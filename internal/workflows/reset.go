package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/foldervault/internal/audit"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// ResetOptions configures the reset-key workflow.
type ResetOptions struct {
	// Force resets even while vaults are encrypted, making them unrecoverable.
	Force bool
}

// ResetResult contains the outcome of a reset operation.
type ResetResult struct {
	// Forgotten lists the vaults that were unregistered.
	Forgotten []*registry.Vault
}

// ResetMasterKey deletes the master key and unregisters every vault, since
// their keys are wrapped under it. A new master key is created on next use.
//
// Returns ErrVaultAlreadyEncrypted if any vault is encrypted and Force is off.
func ResetMasterKey(ctx context.Context, env *Env, opts ResetOptions) (*ResetResult, error) {
	vaults, err := env.Registry.List(ctx)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		for _, v := range vaults {
			if v.Mode == registry.ModeEncrypted {
				return nil, fmt.Errorf("%w: vault %d (%s) would become unrecoverable", kerrors.ErrVaultAlreadyEncrypted, v.ID, v.Path)
			}
		}
	}

	if err := env.MasterKeys.Reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting master key: %w", err)
	}

	result := &ResetResult{}
	for _, v := range vaults {
		if err := env.Registry.Delete(ctx, v.ID); err != nil {
			return result, err
		}
		result.Forgotten = append(result.Forgotten, v)
	}

	entry := audit.LogWithUser("reset-key")
	entry.FilesCount = len(result.Forgotten)
	audit.Log(entry)

	return result, nil
}
