package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded annotate invocation.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         string
	Repo           string
	HeadSHA        string
	Sink           string
	NumAnnotations int
	NumFailures    int
	// CheckRunID is nil when no check run was created.
	CheckRunID *int64
	Conclusion string
	Error      string
	Bundles    []RunBundle
}

// RunBundle is a result bundle processed by a run.
type RunBundle struct {
	Path          string `json:"path" yaml:"path"`
	RootID        string `json:"rootId" yaml:"rootId"`
	FormatVersion string `json:"formatVersion" yaml:"formatVersion"`
	NumWarnings   int    `json:"numWarnings" yaml:"numWarnings"`
	NumErrors     int    `json:"numErrors" yaml:"numErrors"`
}

var (
	// ErrRunNotFound is returned by GetRun for an unknown id.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned by GetRun for a prefix matching several runs.
	ErrAmbiguousRun = errors.New("run id is ambiguous")
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RecordRun stores run and its bundles. An empty ID is filled with a new UUID.
func (db *DB) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	return inTx(ctx, db.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, started_at, finished_at, status, repo, head_sha, sink,
				num_annotations, num_failures, check_run_id, conclusion, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status, run.Repo, run.HeadSHA, run.Sink,
			run.NumAnnotations, run.NumFailures, run.CheckRunID, run.Conclusion, run.Error)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i, b := range run.Bundles {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO run_bundles (run_id, position, path, root_id, format_version, num_warnings, num_errors)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, run.ID, i, b.Path, b.RootID, b.FormatVersion, b.NumWarnings, b.NumErrors)
			if err != nil {
				return fmt.Errorf("failed to insert run bundle: %w", err)
			}
		}
		return nil
	})
}

// ListRuns returns up to limit runs, most recent first, with their bundles.
// A limit of zero or less returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, status, repo, head_sha, sink,
			num_annotations, num_failures, check_run_id, conclusion, error
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range runs {
		if run.Bundles, err = db.runBundles(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun returns the run with the given id or unique id prefix. An exact
// match wins over prefix matches.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, status, repo, head_sha, sink,
			num_annotations, num_failures, check_run_id, conclusion, error
		FROM runs
		WHERE id = ? OR id LIKE ? ESCAPE '\'
		ORDER BY id = ? DESC, id
		LIMIT 2
	`, id, likeEscaper.Replace(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}

	run := matches[0]
	if run.Bundles, err = db.runBundles(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (db *DB) runBundles(ctx context.Context, runID string) ([]RunBundle, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, root_id, format_version, num_warnings, num_errors
		FROM run_bundles
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run bundles: %w", err)
	}
	defer rows.Close()

	var bundles []RunBundle
	for rows.Next() {
		var b RunBundle
		if err := rows.Scan(&b.Path, &b.RootID, &b.FormatVersion, &b.NumWarnings, &b.NumErrors); err != nil {
			return nil, fmt.Errorf("failed to scan run bundle: %w", err)
		}
		bundles = append(bundles, b)
	}
	return bundles, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run        Run
		checkRunID sql.NullInt64
	)
	err := s.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Repo, &run.HeadSHA, &run.Sink,
		&run.NumAnnotations, &run.NumFailures, &checkRunID, &run.Conclusion, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if checkRunID.Valid {
		run.CheckRunID = &checkRunID.Int64
	}
	return &run, nil
}
