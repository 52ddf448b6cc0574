package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/foldervault/internal/configs"
)

// TimestampFormat is RFC3339 in UTC with microseconds.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`
	User      string `json:"user"`
	UserUUID  string `json:"uuid"`
	Operation string `json:"op"`

	VaultID      int64  `json:"vault_id,omitempty"`
	VaultTitle   string `json:"vault_title,omitempty"`
	VaultPath    string `json:"vault_path,omitempty"`
	FilesCount   int    `json:"files_count,omitempty"`
	RemovedCount int    `json:"removed_count,omitempty"`
	DryRun       bool   `json:"dry_run,omitempty"`
	Error        string `json:"error,omitempty"`
}

// LogPath returns the path to the audit log file.
func LogPath() string {
	return configs.UserVaultSettings.AuditLogPath()
}

// Log appends an entry to the audit log, filling in the timestamp.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	logPath := LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the user fields populated.
func LogWithUser(op string) Entry {
	entry := Entry{
		Operation: op,
		User:      configs.UserVaultSettings.Username,
	}

	if userConfig, err := configs.LoadUserConfig(); err == nil {
		entry.UserUUID = userConfig.User.UUID
	}

	return entry
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	data, err := os.ReadFile(LogPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data. Malformed lines are skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// ForVault keeps the entries that concern vault id.
func ForVault(entries []Entry, id int64) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.VaultID == id {
			out = append(out, e)
		}
	}
	return out
}

// Tail returns the last n entries. n <= 0 returns all of them.
func Tail(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}
