package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrRunNotFound is returned when a run id is not in the journal.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when an id prefix matches several runs.
	ErrAmbiguousRun = errors.New("run id prefix matches more than one run")
)

// Store manages the run journal backed by SQLite.
type Store struct {
	db    *sql.DB
	path  string
	now   func() time.Time
	newID func() string
}

// Open initializes or connects to the journal at path and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now, newID: uuid.NewString}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Begin records the start of a run and returns its id.
func (s *Store) Begin(ctx context.Context, manifestPath string, dryRun bool) (string, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, manifest_path, dry_run, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, manifestPath, boolToInt(dryRun), StatusRunning, s.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordEntry appends an entry outcome to run runID.
func (s *Store) RecordEntry(ctx context.Context, runID string, rec EntryRecord) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO run_entries (
            run_id, position, repo, ref, command, outcome, checked_count, mismatches, error_message, recorded_at
        ) SELECT id, (SELECT COUNT(1) FROM run_entries WHERE run_id = ?), ?, ?, ?, ?, ?, ?, ?, ?
          FROM runs WHERE id = ?`,
		runID,
		rec.Repo,
		nullableString(rec.Ref),
		rec.Command,
		rec.Outcome,
		rec.CheckedCount,
		rec.Mismatches,
		nullableString(rec.Error),
		s.timestamp(),
		runID,
	)
	if err != nil {
		return fmt.Errorf("insert run entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record entry for %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Finish marks run runID with its final status and cache delta.
func (s *Store) Finish(ctx context.Context, runID string, status Status, added, removed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, added = ?, removed = ? WHERE id = ?`,
		status, s.timestamp(), added, removed, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Get returns the run whose id is id, or the only run whose id starts with
// it, together with its entries.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("get: %w", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id = ? DESC LIMIT 2`,
		id, len(id), id, id)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("get %s: %w", id, ErrRunNotFound)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("get %s: %w", id, ErrAmbiguousRun)
	}
	run := matches[0]
	if run.Entries, err = s.entries(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// Recent returns up to limit runs, newest first, with their entries.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		if runs[i].Entries, err = s.entries(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) entries(ctx context.Context, runID string) ([]EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT repo, ref, command, outcome, checked_count, mismatches, error_message
         FROM run_entries WHERE run_id = ? ORDER BY position, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run entries: %w", err)
	}
	defer rows.Close()

	var entries []EntryRecord
	for rows.Next() {
		var (
			rec    EntryRecord
			ref    sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&rec.Repo, &ref, &rec.Command, &rec.Outcome, &rec.CheckedCount, &rec.Mismatches, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		rec.Ref = ref.String
		rec.Error = errMsg.String
		entries = append(entries, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run entries: %w", err)
	}
	return entries, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
