// Package db stores the history of annotate runs in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
}

// OpenPath opens the database at dbPath, creating its directory, and runs
// pending migrations. ":memory:" opens a private in-memory database.
func OpenPath(ctx context.Context, dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// OpenExisting opens the database at dbPath as it is, without applying
// migrations. The file must exist.
func OpenExisting(dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return open(dbPath)
}

func open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each in-memory connection is a separate database.
	db.SetMaxOpenConns(1)
	return &DB{DB: db}, nil
}
