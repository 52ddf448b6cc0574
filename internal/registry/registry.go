package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"

	"github.com/mattn/go-sqlite3"
)

// Mode is whether a vault's files are currently encrypted.
type Mode string

const (
	ModeEncrypted Mode = "encrypted"
	ModeDecrypted Mode = "decrypted"
)

// Sealing is a wrapped vault key and the vault nonce its blobs share.
type Sealing struct {
	WrappedKey []byte
	Nonce      []byte
}

// Vault is a registered folder.
type Vault struct {
	ID          int64
	Title       string
	Description string
	Path        string
	WrappedKey  []byte
	VaultNonce  []byte
	Mode        Mode

	// Previous is set while a run that reseals the vault is in flight, or
	// after one was interrupted. Blobs not yet rewritten are still sealed
	// under it.
	Previous *Sealing

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Current returns the sealing new blobs are written under.
func (v *Vault) Current() Sealing {
	return Sealing{WrappedKey: v.WrappedKey, Nonce: v.VaultNonce}
}

// Repository stores vault records.
type Repository interface {
	Create(ctx context.Context, v *Vault) error
	Get(ctx context.Context, id int64) (*Vault, error)
	GetByPath(ctx context.Context, path string) (*Vault, error)
	List(ctx context.Context) ([]*Vault, error)
	Search(ctx context.Context, query string) ([]*Vault, error)
	UpdateSealing(ctx context.Context, id int64, mode Mode, current Sealing, previous *Sealing) error
	Delete(ctx context.Context, id int64) error
}

// SQLiteRegistry implements Repository using SQLite.
type SQLiteRegistry struct {
	db *sql.DB
}

// NewSQLiteRegistry wraps db and ensures the schema exists.
func NewSQLiteRegistry(db *sql.DB) (*SQLiteRegistry, error) {
	r := &SQLiteRegistry{db: db}
	if err := r.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return r, nil
}

func (r *SQLiteRegistry) createTables() error {
	createVaultsTable := `
	CREATE TABLE IF NOT EXISTS vaults (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL UNIQUE,
		wrapped_key BLOB NOT NULL,
		vault_nonce BLOB NOT NULL,
		mode TEXT NOT NULL CHECK (mode IN ('encrypted', 'decrypted')),
		prev_wrapped_key BLOB,
		prev_nonce BLOB,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`

	if _, err := r.db.Exec(createVaultsTable); err != nil {
		return err
	}
	return r.addMissingColumns("vaults", map[string]string{
		"prev_wrapped_key": "BLOB",
		"prev_nonce":       "BLOB",
	})
}

// addMissingColumns upgrades tables created by older releases.
func (r *SQLiteRegistry) addMissingColumns(table string, columns map[string]string) error {
	rows, err := r.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return err
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for name, typ := range columns {
		if existing[name] {
			continue
		}
		if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, name, typ)); err != nil {
			return fmt.Errorf("adding column %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

const selectVault = `
	SELECT id, title, description, path, wrapped_key, vault_nonce, mode, prev_wrapped_key, prev_nonce, created_at, updated_at
	FROM vaults`

type scanner interface {
	Scan(dest ...any) error
}

func scanVault(s scanner) (*Vault, error) {
	v := &Vault{}
	var mode, createdAt, updatedAt string
	var prevKey, prevNonce []byte
	if err := s.Scan(&v.ID, &v.Title, &v.Description, &v.Path, &v.WrappedKey, &v.VaultNonce, &mode, &prevKey, &prevNonce, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	v.Mode = Mode(mode)
	if len(prevKey) > 0 && len(prevNonce) > 0 {
		v.Previous = &Sealing{WrappedKey: prevKey, Nonce: prevNonce}
	}

	var err error
	if v.CreatedAt, err = stringToTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if v.UpdatedAt, err = stringToTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return v, nil
}

func (r *SQLiteRegistry) getOne(ctx context.Context, where string, arg any) (*Vault, error) {
	v, err := scanVault(r.db.QueryRowContext(ctx, selectVault+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kerrors.ErrVaultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	return v, nil
}

func (r *SQLiteRegistry) query(ctx context.Context, q string, args ...any) ([]*Vault, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vaults: %w", err)
	}
	defer rows.Close()

	var vaults []*Vault
	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vault: %w", err)
		}
		vaults = append(vaults, v)
	}
	return vaults, rows.Err()
}

// Create inserts v and sets its ID. Timestamps default to now.
func (r *SQLiteRegistry) Create(ctx context.Context, v *Vault) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = now
	}

	prevKey, prevNonce := previousColumns(v.Previous)
	query := `
	INSERT INTO vaults (title, description, path, wrapped_key, vault_nonce, mode, prev_wrapped_key, prev_nonce, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		v.Title, v.Description, v.Path, v.WrappedKey, v.VaultNonce, string(v.Mode), prevKey, prevNonce,
		timeToString(v.CreatedAt), timeToString(v.UpdatedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", kerrors.ErrVaultExists, v.Path)
		}
		return fmt.Errorf("failed to create vault: %w", err)
	}

	if v.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read vault id: %w", err)
	}
	return nil
}

// Get returns ErrVaultNotFound when no vault has id.
func (r *SQLiteRegistry) Get(ctx context.Context, id int64) (*Vault, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByPath looks a vault up by its absolute folder path.
func (r *SQLiteRegistry) GetByPath(ctx context.Context, path string) (*Vault, error) {
	return r.getOne(ctx, "path = ?", path)
}

// List returns every vault, oldest first.
func (r *SQLiteRegistry) List(ctx context.Context) ([]*Vault, error) {
	return r.query(ctx, selectVault+" ORDER BY id")
}

// Search returns vaults whose title or path contains query, case-insensitively.
func (r *SQLiteRegistry) Search(ctx context.Context, query string) ([]*Vault, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.query(ctx,
		selectVault+` WHERE title LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\' ORDER BY id`,
		pattern, pattern,
	)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// UpdateSealing records a vault's mode and key material in one statement.
// A nil previous clears it.
func (r *SQLiteRegistry) UpdateSealing(ctx context.Context, id int64, mode Mode, current Sealing, previous *Sealing) error {
	prevKey, prevNonce := previousColumns(previous)
	return r.exec(ctx,
		`UPDATE vaults SET mode = ?, wrapped_key = ?, vault_nonce = ?, prev_wrapped_key = ?, prev_nonce = ?, updated_at = ? WHERE id = ?`,
		id, string(mode), current.WrappedKey, current.Nonce, prevKey, prevNonce, timeToString(time.Now()), id,
	)
}

// previousColumns maps a missing sealing to SQL NULLs.
func previousColumns(p *Sealing) (wrappedKey, nonce any) {
	if p == nil {
		return nil, nil
	}
	return p.WrappedKey, p.Nonce
}

// Delete removes the vault record. Files on disk are not touched.
func (r *SQLiteRegistry) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM vaults WHERE id = ?`, id, id)
}

func (r *SQLiteRegistry) exec(ctx context.Context, query string, id int64, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return kerrors.ErrVaultExists
		}
		return fmt.Errorf("failed to update vault %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", kerrors.ErrVaultNotFound, id)
	}
	return nil
}
