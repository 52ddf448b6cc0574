package folder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/utils"
)

// Entry is a regular file inside a Tree.
type Entry struct {
	// Path is slash-separated and relative to the tree root.
	Path string
	Size int64
}

// Tree enumerates and accesses the files of a vault.
type Tree interface {
	// List returns every regular file, sorted by path.
	List(ctx context.Context) ([]Entry, error)
	ReadAll(rel string) ([]byte, error)
	// WriteAll replaces rel atomically, creating parent directories.
	WriteAll(rel string, data []byte) error
	Remove(rel string) error
}

// DirTree is a Tree over a local directory. Symlinks and other irregular
// files are skipped, never followed.
type DirTree struct {
	Root string
}

// NewDirTree returns a tree rooted at an existing directory.
func NewDirTree(root string) (*DirTree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrPathInvalid, err)
	}
	if !utils.IsDir(abs) {
		return nil, fmt.Errorf("%w: %s is not a directory", kerrors.ErrPathInvalid, root)
	}
	return &DirTree{Root: abs}, nil
}

func (t *DirTree) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(t.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(t.Root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (t *DirTree) resolve(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q escapes the vault root", kerrors.ErrPathInvalid, rel)
	}
	return filepath.Join(t.Root, local), nil
}

func (t *DirTree) ReadAll(rel string) ([]byte, error) {
	path, err := t.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (t *DirTree) WriteAll(rel string, data []byte) error {
	path, err := t.resolve(rel)
	if err != nil {
		return err
	}

	perm := os.FileMode(0600)
	if !strings.HasSuffix(rel, Suffix) {
		// #nosec G306 -- decrypted files stay editable by the user
		perm = 0644
	}
	return utils.WriteFileAtomic(path, data, perm)
}

func (t *DirTree) Remove(rel string) error {
	path, err := t.resolve(rel)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
