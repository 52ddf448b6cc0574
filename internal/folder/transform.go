package folder

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/crypto"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	logger "github.com/PolarWolf314/foldervault/internal/logging"
)

// Suffix marks an encrypted file.
const Suffix = ".enc"

// Result lists what a run did. Paths are relative to the tree root.
type Result struct {
	// Processed holds source paths that were transformed (or would be, on a
	// dry run).
	Processed []string
	// Resealed holds blobs left by an earlier run that were rewritten under
	// this run's keys.
	Resealed []string
	// Skipped holds paths left alone because of their suffix or a filter.
	Skipped []string
	// Removed counts source files deleted after transformation.
	Removed int
}

// Keys identifies the key material a vault's blobs are sealed under.
type Keys struct {
	VaultKey   []byte
	MasterKey  []byte
	VaultNonce []byte
}

func (k Keys) check() error {
	if err := checkKeys(k.VaultKey, k.MasterKey); err != nil {
		return err
	}
	if len(k.VaultNonce) != crypto.NonceSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidNonceLength, crypto.NonceSize, len(k.VaultNonce))
	}
	return nil
}

func checkAll(keys []Keys) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys given", kerrors.ErrInvalidKeyLength)
	}
	for _, k := range keys {
		if err := k.check(); err != nil {
			return err
		}
	}
	return nil
}

// openAny authenticates blob under each candidate in turn. It returns the
// plaintext and the index of the keys that opened it, or the first
// candidate's error when none does.
func openAny(blob []byte, candidates []Keys) ([]byte, int, error) {
	var firstErr error
	for i, k := range candidates {
		plaintext, err := crypto.DecryptBundle(blob, k.VaultNonce, k.MasterKey, k.VaultKey)
		if err == nil {
			return plaintext, i, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, -1, firstErr
}

// Transformer applies the vault crypto engine to whole trees.
type Transformer struct {
	Logger logger.Logger
}

func checkKeys(keys ...[]byte) error {
	for _, k := range keys {
		if len(k) != crypto.KeySize {
			return fmt.Errorf("%w: expected %d bytes, got %d", kerrors.ErrInvalidKeyLength, crypto.KeySize, len(k))
		}
	}
	return nil
}

// EncryptFolder encrypts every selected plain file under tree into name.enc
// under a fresh vault nonce, which it returns. Callers that must persist the
// nonce before the first blob exists use EncryptFolderWithNonce.
func (t *Transformer) EncryptFolder(ctx context.Context, tree Tree, vaultKey, masterKey []byte, opts Options) (*Result, [crypto.NonceSize]byte, error) {
	var vaultNonce [crypto.NonceSize]byte

	if err := checkKeys(vaultKey, masterKey); err != nil {
		return nil, vaultNonce, err
	}
	vaultNonce, err := crypto.NewNonce()
	if err != nil {
		return nil, vaultNonce, err
	}

	keys := Keys{VaultKey: vaultKey, MasterKey: masterKey, VaultNonce: vaultNonce[:]}
	res, err := t.EncryptFolderWithNonce(ctx, tree, keys, nil, opts)
	return res, vaultNonce, err
}

// EncryptFolderWithNonce encrypts every selected plain file under next.
//
// Files already named .enc are checked before anything is written. Blobs
// that open under next are done. Blobs that open under one of earlier are
// resealed under next, unless their source file is present and overwrites
// them. Any other .enc file is not a blob of this vault and the run is
// refused with ErrPathInvalid.
func (t *Transformer) EncryptFolderWithNonce(ctx context.Context, tree Tree, next Keys, earlier []Keys, opts Options) (*Result, error) {
	if err := next.check(); err != nil {
		return nil, err
	}
	for _, k := range earlier {
		if err := k.check(); err != nil {
			return nil, err
		}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	entries, err := tree.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vault: %w: %w", kerrors.ErrReadFailed, err)
	}

	res := &Result{}
	var plain, blobs []string
	for _, e := range entries {
		switch {
		case !opts.selects(e.Path):
			res.Skipped = append(res.Skipped, e.Path)
		case strings.HasSuffix(e.Path, Suffix):
			blobs = append(blobs, e.Path)
		default:
			plain = append(plain, e.Path)
		}
	}

	reseal, err := t.sortBlobs(ctx, tree, blobs, plain, next, earlier, res)
	if err != nil {
		return res, err
	}

	if opts.DryRun {
		for _, rel := range plain {
			t.Logger.Debugf("Would encrypt %s", rel)
		}
		res.Processed = plain
		res.Resealed = reseal
		return res, nil
	}

	for _, rel := range reseal {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := t.resealFile(tree, rel, earlier, next); err != nil {
			return res, err
		}
		res.Resealed = append(res.Resealed, rel)
	}

	for _, rel := range plain {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := t.encryptFile(tree, rel, next, opts, res); err != nil {
			return res, err
		}
	}

	t.Logger.Infof("Encrypted %d file(s), resealed %d, skipped %d", len(res.Processed), len(res.Resealed), len(res.Skipped))
	return res, nil
}

// sortBlobs authenticates the existing .enc files of an encrypt run and
// returns the ones to reseal.
func (t *Transformer) sortBlobs(ctx context.Context, tree Tree, blobs, plain []string, next Keys, earlier []Keys, res *Result) ([]string, error) {
	if len(blobs) == 0 {
		return nil, nil
	}

	sources := make(map[string]bool, len(plain))
	for _, rel := range plain {
		sources[rel] = true
	}
	candidates := append([]Keys{next}, earlier...)

	var reseal, foreign []string
	for _, rel := range blobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := tree.ReadAll(rel)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w: %w", rel, kerrors.ErrReadFailed, err)
		}

		plaintext, idx, err := openAny(data, candidates)
		crypto.Zero(plaintext)
		switch {
		case err != nil:
			foreign = append(foreign, rel)
		case idx == 0 || sources[strings.TrimSuffix(rel, Suffix)]:
			res.Skipped = append(res.Skipped, rel)
		default:
			reseal = append(reseal, rel)
		}
	}

	if len(foreign) > 0 {
		return nil, fmt.Errorf("%w: not encrypted by this vault, rename or exclude them: %s",
			kerrors.ErrPathInvalid, strings.Join(foreign, ", "))
	}
	return reseal, nil
}

func (t *Transformer) encryptFile(tree Tree, rel string, keys Keys, opts Options, res *Result) error {
	plaintext, err := tree.ReadAll(rel)
	if err != nil {
		return fmt.Errorf("reading %s: %w: %w", rel, kerrors.ErrReadFailed, err)
	}
	defer crypto.Zero(plaintext)

	// Every file in this run shares keys.VaultNonce. This is only safe
	// because each bundle's outer plaintext starts with a fresh random inner
	// nonce.
	blob, err := crypto.EncryptBundleWithNonce(plaintext, keys.VaultKey, keys.MasterKey, keys.VaultNonce)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", rel, err)
	}

	if err := tree.WriteAll(rel+Suffix, blob); err != nil {
		return fmt.Errorf("writing %s: %w: %w", rel+Suffix, kerrors.ErrWriteFailed, err)
	}
	t.Logger.Debugf("Encrypted %s", rel)
	res.Processed = append(res.Processed, rel)

	if !opts.KeepSource {
		if err := tree.Remove(rel); err != nil {
			return fmt.Errorf("removing %s: %w: %w", rel, kerrors.ErrWriteFailed, err)
		}
		res.Removed++
	}
	return nil
}

// resealFile rewrites the blob rel, sealed under one of from, under next.
func (t *Transformer) resealFile(tree Tree, rel string, from []Keys, next Keys) error {
	blob, err := tree.ReadAll(rel)
	if err != nil {
		return fmt.Errorf("reading %s: %w: %w", rel, kerrors.ErrReadFailed, err)
	}

	plaintext, _, err := openAny(blob, from)
	if err != nil {
		return fmt.Errorf("decrypting %s: %w", rel, err)
	}
	defer crypto.Zero(plaintext)

	// Shared vault nonce, see encryptFile.
	resealed, err := crypto.EncryptBundleWithNonce(plaintext, next.VaultKey, next.MasterKey, next.VaultNonce)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", rel, err)
	}

	if err := tree.WriteAll(rel, resealed); err != nil {
		return fmt.Errorf("writing %s: %w: %w", rel, kerrors.ErrWriteFailed, err)
	}
	t.Logger.Debugf("Re-encrypted %s", rel)
	return nil
}

// DecryptFolder restores every selected .enc file under tree. Both layers of
// a blob are verified before its plaintext is written.
func (t *Transformer) DecryptFolder(ctx context.Context, tree Tree, vaultKey, masterKey, vaultNonce []byte, opts Options) (*Result, error) {
	return t.DecryptFolderWith(ctx, tree, []Keys{{VaultKey: vaultKey, MasterKey: masterKey, VaultNonce: vaultNonce}}, opts)
}

// DecryptFolderWith is DecryptFolder for a tree whose blobs may be sealed
// under any of keys, as an interrupted run leaves it. Each blob is opened
// with the first keys that authenticate it.
func (t *Transformer) DecryptFolderWith(ctx context.Context, tree Tree, keys []Keys, opts Options) (*Result, error) {
	if err := checkAll(keys); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	entries, err := tree.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vault: %w: %w", kerrors.ErrReadFailed, err)
	}

	res := &Result{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !strings.HasSuffix(e.Path, Suffix) || !opts.selects(e.Path) {
			res.Skipped = append(res.Skipped, e.Path)
			continue
		}

		if err := t.decryptFile(tree, e.Path, keys, opts, res); err != nil {
			return res, err
		}
	}

	if opts.DryRun {
		t.Logger.Infof("Verified %d file(s), skipped %d", len(res.Processed), len(res.Skipped))
	} else {
		t.Logger.Infof("Decrypted %d file(s), skipped %d", len(res.Processed), len(res.Skipped))
	}
	return res, nil
}

func (t *Transformer) decryptFile(tree Tree, rel string, keys []Keys, opts Options, res *Result) error {
	blob, err := tree.ReadAll(rel)
	if err != nil {
		return fmt.Errorf("reading %s: %w: %w", rel, kerrors.ErrReadFailed, err)
	}

	plaintext, _, err := openAny(blob, keys)
	if err != nil {
		return fmt.Errorf("decrypting %s: %w", rel, err)
	}
	defer crypto.Zero(plaintext)

	if opts.DryRun {
		t.Logger.Debugf("Verified %s", rel)
		res.Processed = append(res.Processed, rel)
		return nil
	}

	target := strings.TrimSuffix(rel, Suffix)
	if err := tree.WriteAll(target, plaintext); err != nil {
		return fmt.Errorf("writing %s: %w: %w", target, kerrors.ErrWriteFailed, err)
	}
	t.Logger.Debugf("Decrypted %s", rel)
	res.Processed = append(res.Processed, rel)

	if !opts.KeepSource {
		if err := tree.Remove(rel); err != nil {
			return fmt.Errorf("removing %s: %w: %w", rel, kerrors.ErrWriteFailed, err)
		}
		res.Removed++
	}
	return nil
}
