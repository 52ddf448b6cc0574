package folder

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/crypto"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
)

// Rekey re-seals every .enc blob from prev to next under a fresh vault
// nonce, which it returns. next.VaultNonce is ignored.
func (t *Transformer) Rekey(ctx context.Context, tree Tree, prev, next Keys, opts Options) (*Result, [crypto.NonceSize]byte, error) {
	var vaultNonce [crypto.NonceSize]byte

	if err := checkKeys(next.VaultKey, next.MasterKey); err != nil {
		return nil, vaultNonce, err
	}
	vaultNonce, err := crypto.NewNonce()
	if err != nil {
		return nil, vaultNonce, err
	}

	next.VaultNonce = vaultNonce[:]
	res, err := t.RekeyWith(ctx, tree, []Keys{prev}, next, opts)
	return res, vaultNonce, err
}

// RekeyWith re-seals every selected .enc blob under next. Each blob must open
// under next, which means an earlier run already moved it, or under one of
// from. All blobs are authenticated before the first one is rewritten, so a
// wrong key or a damaged file leaves the tree untouched.
func (t *Transformer) RekeyWith(ctx context.Context, tree Tree, from []Keys, next Keys, opts Options) (*Result, error) {
	if err := checkAll(append([]Keys{next}, from...)); err != nil {
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
	candidates := append([]Keys{next}, from...)
	var pending []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Path, Suffix) || !opts.selects(e.Path) {
			res.Skipped = append(res.Skipped, e.Path)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		blob, err := tree.ReadAll(e.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w: %w", e.Path, kerrors.ErrReadFailed, err)
		}
		plaintext, idx, err := openAny(blob, candidates)
		crypto.Zero(plaintext)
		if err != nil {
			return nil, fmt.Errorf("decrypting %s: %w", e.Path, err)
		}
		if idx == 0 {
			res.Skipped = append(res.Skipped, e.Path)
			continue
		}
		pending = append(pending, e.Path)
	}

	if opts.DryRun {
		res.Processed = pending
		return res, nil
	}

	for _, rel := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := t.resealFile(tree, rel, from, next); err != nil {
			return res, err
		}
		res.Processed = append(res.Processed, rel)
	}

	t.Logger.Infof("Re-encrypted %d file(s)", len(res.Processed))
	return res, nil
}

// Summary counts the files of a tree by state.
type Summary struct {
	Encrypted int
	Plain     int
	Bytes     int64
}

// Inventory counts encrypted and plain files that pass opts' filters.
func Inventory(ctx context.Context, tree Tree, opts Options) (*Summary, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	entries, err := tree.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vault: %w: %w", kerrors.ErrReadFailed, err)
	}

	s := &Summary{}
	for _, e := range entries {
		if !opts.selects(e.Path) {
			continue
		}
		if strings.HasSuffix(e.Path, Suffix) {
			s.Encrypted++
		} else {
			s.Plain++
		}
		s.Bytes += e.Size
	}
	return s, nil
}
