package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
)

var (
	// ErrChecksumMismatch means an applied migration file was edited after it ran.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
	// ErrUnknownMigration means the database records a migration this build does not ship.
	ErrUnknownMigration = errors.New("unknown migration")
)

// Migration is one embedded SQL file.
type Migration struct {
	Name     string
	SQL      string
	Checksum string
}

// Run verifies the recorded history against the embedded files and applies
// whatever is pending, in filename order. Each file runs in its own
// transaction together with its history row.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			checksum   TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	pending, err := Pending(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
		slog.Info("migration applied", "file", m.Name, "checksum", m.Checksum[:12])
	}
	return nil
}

// Pending returns the embedded migrations not yet recorded. It fails if a
// recorded migration is missing from the build or no longer matches its
// checksum.
func Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	applied, err := Applied(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("get applied migrations: %w", err)
	}
	all, err := Load()
	if err != nil {
		return nil, fmt.Errorf("load migration files: %w", err)
	}

	known := make(map[string]bool, len(all))
	var pending []Migration
	for _, m := range all {
		known[m.Name] = true
		sum, ok := applied[m.Name]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if sum != m.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, m.Name)
		}
	}
	for name := range applied {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMigration, name)
		}
	}
	return pending, nil
}

// Applied returns the recorded checksum of every applied migration, keyed by filename.
func Applied(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT filename, checksum FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var name, sum string
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, err
		}
		applied[name] = sum
	}
	return applied, rows.Err()
}

// Load reads the embedded migrations in filename order.
func Load() ([]Migration, error) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return nil, err
	}

	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(FS, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(content)
		out = append(out, Migration{
			Name:     entry.Name(),
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}
	slices.SortFunc(out, func(a, b Migration) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("execute sql: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (filename, checksum) VALUES (?, ?)", m.Name, m.Checksum); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
