package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/foldervault/internal/audit"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logVault     int64
	logLimit     int
	logReverse   bool
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().Int64Var(&logVault, "vault", 0, "filter by vault ID")
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logVault = 0
	logLimit = 0
	logReverse = false
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of vault operations.

Examples:
  foldervault vault log                              # View full log
  foldervault vault log -n 10                        # Last 10 entries
  foldervault vault log --reverse                    # Most recent first
  foldervault vault log --vault 3                    # One vault only
  foldervault vault log --operation encrypt,decrypt  # Filter by operation
  foldervault vault log --since 2024-01-01           # Filter by date
  foldervault vault log --json                       # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading audit log...", verbose, debug)
	defer cleanup()

	result, err := workflows.Log(cmd.Context(), workflows.LogOptions{
		VaultID:    logVault,
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		spinner.FinalMSG = ui.ErrorLine(err.Error())
		return err
	}

	Logger.Debugf("Parsed %d entries from audit log", result.Total)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.Total == 0 {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No audit log entries found."
		} else {
			spinner.FinalMSG = ui.Info.Sprint("ℹ") + " No audit log entries found matching the filters."
		}
		return nil
	}

	switch {
	case logJSON:
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		spinner.FinalMSG = string(data)
	case logOneline:
		spinner.FinalMSG = formatLogOneline(result.Entries)
	default:
		spinner.FinalMSG = formatLogDefault(result.Entries)
	}
	return nil
}

func formatLogOneline(entries []audit.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s %s\n", formatDate(e.Timestamp, "2006-01-02"), e.User, e.Operation, formatDetails(e))
	}
	return b.String()
}

func formatLogDefault(entries []audit.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-19s  %-16s  %-10s  %s\n", formatDate(e.Timestamp, "2006-01-02 15:04:05"), e.User, e.Operation, formatDetails(e))
	}
	return b.String()
}

// formatDate renders an audit timestamp in local time, or returns it as is
// when it does not parse.
func formatDate(ts, layout string) string {
	t, err := time.Parse(audit.TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(layout)
}

func formatDetails(e audit.Entry) string {
	var parts []string
	if e.VaultID != 0 {
		parts = append(parts, fmt.Sprintf("vault %d", e.VaultID))
	}
	if e.VaultTitle != "" {
		parts = append(parts, fmt.Sprintf("%q", e.VaultTitle))
	}
	if e.FilesCount > 0 {
		parts = append(parts, fmt.Sprintf("%d file(s)", e.FilesCount))
	}
	if e.DryRun {
		parts = append(parts, "dry-run")
	}
	if e.Error != "" {
		parts = append(parts, "failed: "+e.Error)
	}
	return strings.Join(parts, " ")
}
