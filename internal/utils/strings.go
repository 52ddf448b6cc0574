package utils

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/foldervault/internal/ui"
)

// MaxListedPaths caps how many paths FormatPaths prints before summarizing.
const MaxListedPaths = 20

// FormatPaths renders paths as an indented list, one per line. Lists longer
// than MaxListedPaths end with a count of the paths left out.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, path := range paths {
		if i == MaxListedPaths {
			fmt.Fprintf(&b, "    %s\n", ui.Muted.Sprintf("and %d more", len(paths)-i))
			break
		}
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}
