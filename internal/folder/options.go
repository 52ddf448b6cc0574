package folder

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Options tune a transform run.
type Options struct {
	// Include, when non-empty, restricts the run to matching files.
	Include []string
	// Exclude skips matching files.
	Exclude []string
	// KeepSource leaves the original file next to its counterpart.
	KeepSource bool
	// DryRun reports what would change without writing anything. Decryption
	// still authenticates every blob.
	DryRun bool
}

func (o Options) validate() error {
	for _, patterns := range [][]string{o.Include, o.Exclude} {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid glob pattern %q", p)
			}
		}
	}
	return nil
}

// selects reports whether rel passes the include and exclude filters.
func (o Options) selects(rel string) bool {
	if len(o.Include) > 0 && !matchAny(o.Include, rel) {
		return false
	}
	return !matchAny(o.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// Patterns are validated up front.
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
