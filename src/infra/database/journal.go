package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cratekeeper/src/features/organizing"
)

// SqliteJournal is a SQLite implementation of the organizing Journal.
type SqliteJournal struct {
	db *sql.DB
}

// NewSqliteJournal opens, creating it if needed, the journal database
// at path.
func NewSqliteJournal(path string) (*SqliteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteJournal{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started TEXT NOT NULL,
			finished TEXT,
			moved INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS moves (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			moved_at TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);

		CREATE INDEX IF NOT EXISTS idx_moves_run ON moves(run_id);
	`)
	return err
}

// Close closes the underlying database.
func (d *SqliteJournal) Close() error {
	return d.db.Close()
}

// BeginRun records the start of a run.
func (d *SqliteJournal) BeginRun(ctx context.Context, id, source string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, started)
		VALUES (?, ?, ?)
	`, id, source, time.Now().Format(time.RFC3339))
	return err
}

// RecordMove records one completed move.
func (d *SqliteJournal) RecordMove(ctx context.Context, move organizing.Move) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO moves (run_id, source, destination, moved_at)
		VALUES (?, ?, ?, ?)
	`, move.RunID, move.Source, move.Destination, move.At.Format(time.RFC3339))
	return err
}

// FinishRun closes a run with its final counters.
func (d *SqliteJournal) FinishRun(ctx context.Context, id string, moved, failed int) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE runs SET finished = ?, moved = ?, failed = ? WHERE id = ?
	`, time.Now().Format(time.RFC3339), moved, failed, id)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (d *SqliteJournal) RecentRuns(ctx context.Context, limit int) ([]organizing.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, source, started, COALESCE(finished, ''), moved, failed
		FROM runs
		ORDER BY started DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []organizing.Run
	for rows.Next() {
		var run organizing.Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.Source, &started, &finished, &run.Moved, &run.Failed); err != nil {
			return nil, err
		}
		run.Started, _ = time.Parse(time.RFC3339, started)
		if finished != "" {
			run.Finished, _ = time.Parse(time.RFC3339, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecentMoves returns recorded moves, newest first, optionally
// filtered by run ID.
func (d *SqliteJournal) RecentMoves(ctx context.Context, runID string, limit int) ([]organizing.Move, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT run_id, source, destination, moved_at FROM moves`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moves []organizing.Move
	for rows.Next() {
		var move organizing.Move
		var at string
		if err := rows.Scan(&move.RunID, &move.Source, &move.Destination, &at); err != nil {
			return nil, err
		}
		move.At, _ = time.Parse(time.RFC3339, at)
		moves = append(moves, move)
	}
	return moves, rows.Err()
}
