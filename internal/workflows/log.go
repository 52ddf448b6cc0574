package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/foldervault/internal/audit"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// VaultID filters entries by vault. Zero keeps all.
	VaultID int64

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	Entries []audit.Entry

	// Total is the number of entries before filtering.
	Total int
}

// Log reads and filters the audit log.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	since, err := parseDate(opts.Since, false)
	if err != nil {
		return nil, err
	}
	until, err := parseDate(opts.Until, true)
	if err != nil {
		return nil, err
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	result := &LogResult{Total: len(entries)}

	if opts.VaultID != 0 {
		entries = audit.ForVault(entries, opts.VaultID)
	}

	ops := map[string]bool{}
	for _, op := range strings.Split(opts.Operations, ",") {
		if op = strings.TrimSpace(op); op != "" {
			ops[op] = true
		}
	}

	var filtered []audit.Entry
	for _, e := range entries {
		if len(ops) > 0 && !ops[e.Operation] {
			continue
		}
		if !since.IsZero() || !until.IsZero() {
			ts, err := time.Parse(audit.TimestampFormat, e.Timestamp)
			if err != nil {
				continue
			}
			if !since.IsZero() && ts.Before(since) {
				continue
			}
			if !until.IsZero() && !ts.Before(until) {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	filtered = audit.Tail(filtered, opts.Limit)
	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	result.Entries = filtered
	return result, nil
}

// parseDate parses YYYY-MM-DD in UTC. endOfDay moves the bound to the next
// midnight so the whole day is included.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
