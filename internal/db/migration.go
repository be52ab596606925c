package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
	"github.com/devbotsxyz/xcresult-annotate/internal/signal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one versioned schema change, read from a file named
// "<version>_<name>.sql" with "-- +up" and "-- +down" sections.
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return RunMigrationsForFS(ctx, db, migrationsFS)
}

// RunMigrationsForFS applies all pending migrations found in fsys, in version order.
func RunMigrationsForFS(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := MigrationStatus(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	migrations, err := readMigrations(fsys)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		logging.Info("applying migration", "version", m.Version, "name", m.Name)
		err := signal.Critical(func() error {
			return inTx(ctx, db, func(tx *sql.Tx) error {
				if err := execAll(ctx, tx, m.UpSQL); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
				return err
			})
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
	}
	return nil
}

// RollbackMigration reverts the most recently applied embedded migration.
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	return RollbackMigrationForFS(ctx, db, migrationsFS)
}

// RollbackMigrationForFS reverts the most recently applied migration using its
// down section from fsys.
func RollbackMigrationForFS(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	var version string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no migrations to rollback")
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	migrations, err := readMigrations(fsys)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	idx := migrationIndex(migrations, version)
	if idx < 0 {
		return fmt.Errorf("migration %s not found", version)
	}
	m := migrations[idx]
	if strings.TrimSpace(m.DownSQL) == "" {
		return fmt.Errorf("migration %s has no down script", version)
	}

	logging.Info("rolling back migration", "version", m.Version, "name", m.Name)
	return signal.Critical(func() error {
		return inTx(ctx, db, func(tx *sql.Tx) error {
			if err := execAll(ctx, tx, m.DownSQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", version)
			return err
		})
	})
}

// MigrationStatus returns the applied migration versions in order.
func MigrationStatus(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func execAll(ctx context.Context, tx *sql.Tx, script string) error {
	for _, stmt := range splitSQLStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	return nil
}

func migrationIndex(migrations []Migration, version string) int {
	for i, m := range migrations {
		if m.Version == version {
			return i
		}
	}
	return -1
}

func readMigrations(fsys fs.FS) ([]Migration, error) {
	var migrations []Migration
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		filename := path.Base(p)
		version, name, ok := strings.Cut(strings.TrimSuffix(filename, ".sql"), "_")
		if !ok || version == "" || name == "" {
			return fmt.Errorf("invalid migration filename: %s", filename)
		}

		up, down := parseSections(string(content))
		migrations = append(migrations, Migration{Version: version, Name: name, UpSQL: up, DownSQL: down})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseSections splits a migration file into its up and down scripts.
// Lines before "-- +up" are ignored.
func parseSections(content string) (up, down string) {
	var upLines, downLines []string
	var section *[]string
	for _, line := range strings.Split(content, "\n") {
		switch trimmed := strings.TrimSpace(line); {
		case strings.HasPrefix(trimmed, "-- +up"):
			section = &upLines
		case strings.HasPrefix(trimmed, "-- +down"):
			section = &downLines
		case section != nil:
			*section = append(*section, line)
		}
	}
	return strings.Join(upLines, "\n"), strings.Join(downLines, "\n")
}

// splitSQLStatements splits a script on semicolons outside of quotes and line comments.
func splitSQLStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		quote      rune
		comment    bool
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case comment:
			if c == '\n' {
				comment = false
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
			comment = true
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == ';':
			flush()
			continue
		}
		current.WriteRune(c)
	}
	flush()
	return statements
}
