package workflows

import (
	"context"
	"fmt"
	"io"

	"github.com/PolarWolf314/foldervault/internal/configs"
	"github.com/PolarWolf314/foldervault/internal/crypto"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/folder"
	"github.com/PolarWolf314/foldervault/internal/keystore"
	logger "github.com/PolarWolf314/foldervault/internal/logging"
	"github.com/PolarWolf314/foldervault/internal/masterkey"
	"github.com/PolarWolf314/foldervault/internal/registry"
)

// Env carries the collaborators shared by every workflow.
type Env struct {
	Config      *configs.UserConfig
	Registry    registry.Repository
	MasterKeys  *masterkey.Manager
	Transformer *folder.Transformer
	Logger      logger.Logger

	closer io.Closer
}

// Open wires an Env from the user configuration. A nil auth prompts for the
// passphrase on the terminal. A PassphraseAuthenticator without a Store is
// bound to the configured key store.
func Open(cfg *configs.UserConfig, auth keystore.Authenticator, log logger.Logger) (*Env, error) {
	reg, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		return nil, err
	}

	store := keystore.NewSoftwareKeyStore(cfg.KeystoreDir(), cfg.KDFParams())
	switch a := auth.(type) {
	case nil:
		auth = &keystore.PassphraseAuthenticator{TTL: cfg.HandleTTL(), Store: store}
	case *keystore.PassphraseAuthenticator:
		if a.Store == nil {
			a.Store = store
		}
	}

	manager := masterkey.NewManager(masterkey.Config{
		Records:       masterkey.NewFileRecordStore(configs.UserVaultSettings.RecordsDir()),
		KeyStore:      store,
		Authenticator: auth,
		Alias:         cfg.KeyAlias(),
		Logger:        log,
	})

	return &Env{
		Config:      cfg,
		Registry:    reg,
		MasterKeys:  manager,
		Transformer: &folder.Transformer{Logger: log},
		Logger:      log,
		closer:      reg,
	}, nil
}

// Close releases the registry.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// withMasterKey authenticates and runs fn with the master key. The key is
// wiped when fn returns. created reports whether the key was generated by
// this call.
func (e *Env) withMasterKey(ctx context.Context, fn func(masterKey []byte) error) (created bool, err error) {
	session, err := e.MasterKeys.Authenticate(ctx)
	if err != nil {
		return false, err
	}
	defer session.Close()

	key, err := session.Key()
	if err != nil {
		return session.Created, err
	}
	return session.Created, fn(key)
}

// vaultKeys is the unlocked key material of one vault.
type vaultKeys struct {
	master   []byte
	current  folder.Keys
	previous *folder.Keys
}

// all lists the keys a blob of the vault may be sealed under, current first.
func (k *vaultKeys) all() []folder.Keys {
	if k.previous == nil {
		return []folder.Keys{k.current}
	}
	return []folder.Keys{k.current, *k.previous}
}

// withVaultKeys unlocks the master key and the vault's own keys, including
// the previous sealing an interrupted run left behind. Vault keys are wiped
// when fn returns.
func (e *Env) withVaultKeys(ctx context.Context, v *registry.Vault, fn func(k *vaultKeys) error) error {
	_, err := e.withMasterKey(ctx, func(masterKey []byte) error {
		vaultKey, err := crypto.UnwrapVaultKey(v.WrappedKey, masterKey)
		if err != nil {
			return fmt.Errorf("unlocking key of vault %d: %w", v.ID, err)
		}
		defer crypto.Zero(vaultKey)

		k := &vaultKeys{
			master:  masterKey,
			current: folder.Keys{VaultKey: vaultKey, MasterKey: masterKey, VaultNonce: v.VaultNonce},
		}
		if p := v.Previous; p != nil {
			prevKey, err := crypto.UnwrapVaultKey(p.WrappedKey, masterKey)
			if err != nil {
				return fmt.Errorf("unlocking previous key of vault %d: %w", v.ID, err)
			}
			defer crypto.Zero(prevKey)
			k.previous = &folder.Keys{VaultKey: prevKey, MasterKey: masterKey, VaultNonce: p.Nonce}
		}
		return fn(k)
	})
	return err
}

// recordSealing stores a vault's mode and sealing and mirrors them on v. It
// runs even when ctx was cancelled, so the registry always describes the
// blobs a stopped run left on disk.
func (e *Env) recordSealing(ctx context.Context, v *registry.Vault, mode registry.Mode, current registry.Sealing, previous *registry.Sealing) error {
	if err := e.Registry.UpdateSealing(context.WithoutCancel(ctx), v.ID, mode, current, previous); err != nil {
		return fmt.Errorf("recording state of vault %d: %w", v.ID, err)
	}
	v.Mode, v.WrappedKey, v.VaultNonce, v.Previous = mode, current.WrappedKey, current.Nonce, previous
	return nil
}

// TransformOptions are the per-run file selection flags shared by the
// transforming workflows.
type TransformOptions struct {
	// Exclude adds doublestar globs to the configured defaults.
	Exclude []string
	// KeepSource keeps originals next to their counterparts.
	KeepSource bool
	// DryRun reports without writing.
	DryRun bool
}

func (e *Env) folderOptions(t TransformOptions) folder.Options {
	exclude := append([]string(nil), e.Config.Vault.Exclude...)
	return folder.Options{
		Exclude:    append(exclude, t.Exclude...),
		KeepSource: e.Config.Vault.KeepSource || t.KeepSource,
		DryRun:     t.DryRun,
	}
}

func (e *Env) openTree(v *registry.Vault) (*folder.DirTree, error) {
	tree, err := folder.NewDirTree(v.Path)
	if err != nil {
		return nil, fmt.Errorf("vault %d folder %s: %w", v.ID, v.Path, err)
	}
	return tree, nil
}

func (e *Env) getVault(ctx context.Context, id int64) (*registry.Vault, error) {
	v, err := e.Registry.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("vault %d: %w", id, err)
	}
	return v, nil
}

// errVaultMode builds the error for a vault in the wrong mode.
func errVaultMode(v *registry.Vault) error {
	if v.Mode == registry.ModeEncrypted {
		return fmt.Errorf("vault %d: %w", v.ID, kerrors.ErrVaultAlreadyEncrypted)
	}
	return fmt.Errorf("vault %d: %w", v.ID, kerrors.ErrVaultAlreadyDecrypted)
}
