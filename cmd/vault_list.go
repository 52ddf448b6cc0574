package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/foldervault/internal/registry"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON array")
	searchCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON array")
}

// resetListCommandState resets the list and search commands' global state for testing.
func resetListCommandState() {
	listJSON = false
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all vaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")
		spinner, cleanup := startSpinner("Loading vaults...", verbose, debug)
		defer cleanup()

		env, err := openEnv(spinner)
		if err != nil {
			return reportError(spinner, err)
		}
		defer env.Close()

		vaults, err := workflows.List(cmd.Context(), env)
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Debugf("Found %d vaults", len(vaults))

		return showVaults(spinner, vaults,
			ui.Info.Sprint("ℹ")+" No vaults yet\n"+
				ui.HintLine("Run "+ui.Code.Sprint("foldervault vault create <folder>")+" to create one"))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find vaults by title or path",
	Long: `Lists the vaults whose title or folder path contains the
query. Matching ignores ASCII case.

Examples:
  foldervault vault search taxes
  foldervault vault search Documents --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting search command")
		spinner, cleanup := startSpinner("Searching vaults...", verbose, debug)
		defer cleanup()

		env, err := openEnv(spinner)
		if err != nil {
			return reportError(spinner, err)
		}
		defer env.Close()

		vaults, err := workflows.Search(cmd.Context(), env, args[0])
		if err != nil {
			return reportError(spinner, err)
		}
		Logger.Debugf("Found %d vaults matching %q", len(vaults), args[0])

		return showVaults(spinner, vaults,
			ui.Info.Sprint("ℹ")+" No vaults match "+ui.Highlight.Sprint(args[0]))
	},
}

// vaultJSON is the JSON view of a vault. Key material is left out.
type vaultJSON struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Path        string    `json:"path"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toVaultJSON(v *registry.Vault) vaultJSON {
	return vaultJSON{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Path:        v.Path,
		Mode:        string(v.Mode),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// showVaults sets the final message to a vault table, JSON or the empty message.
func showVaults(s *spinner.Spinner, vaults []*registry.Vault, empty string) error {
	if listJSON {
		out := make([]vaultJSON, 0, len(vaults))
		for _, v := range vaults {
			out = append(out, toVaultJSON(v))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal vaults to JSON: %w", err)
		}
		s.FinalMSG = string(data)
		return nil
	}

	if len(vaults) == 0 {
		s.FinalMSG = empty
		return nil
	}

	s.FinalMSG = formatVaultTable(vaults)
	return nil
}

func formatVaultTable(vaults []*registry.Vault) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s  %-10s  %-24s  %s\n", "ID", "MODE", "TITLE", "PATH")
	for _, v := range vaults {
		mode := string(v.Mode)
		fmt.Fprintf(&b, "%-5d  %s  %-24s  %s\n", v.ID, ui.ModeFormatter(mode).Column(mode, 10), v.Title, ui.Path.Sprint(v.Path))
	}
	return b.String()
}
