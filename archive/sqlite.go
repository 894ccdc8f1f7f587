// Package archive persists finalized lineage summaries so later runs can be
// compared against earlier ones. The store is append-only: records are
// inserted and queried, never updated or deleted.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loom-forge/weaver/core"
)

// SQLiteArchive implements core.Archivist on a local SQLite database.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens (or creates) the archive database at dbPath.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &SQLiteArchive{db: db}
	if err := a.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return a, nil
}

func (a *SQLiteArchive) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		lineage_id TEXT NOT NULL,
		intent TEXT NOT NULL,
		best_pattern_id TEXT NOT NULL,
		best_generation INTEGER NOT NULL,
		best_origin TEXT NOT NULL,
		best_composite REAL NOT NULL,
		history TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_run ON run_summaries(run_id);
	CREATE INDEX IF NOT EXISTS idx_summaries_lineage ON run_summaries(lineage_id);
	CREATE INDEX IF NOT EXISTS idx_summaries_created ON run_summaries(created_at);
	`

	_, err := a.db.Exec(query)
	return err
}

// Record appends one lineage summary. The score history is stored as JSON so
// the full pillar breakdown survives round trips.
func (a *SQLiteArchive) Record(ctx context.Context, summary core.RunSummary) error {
	history, err := json.Marshal(summary.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
	INSERT INTO run_summaries (
		run_id, lineage_id, intent, best_pattern_id, best_generation,
		best_origin, best_composite, history, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = a.db.ExecContext(ctx, query,
		summary.RunID,
		summary.LineageID,
		summary.Intent,
		summary.Best.PatternID,
		summary.Best.Generation,
		string(summary.Best.Origin),
		summary.Best.Composite,
		string(history),
		createdAt,
	)
	return err
}

// Query returns every archived summary for a lineage id, newest first. An
// empty lineageID returns all summaries.
func (a *SQLiteArchive) Query(ctx context.Context, lineageID string) ([]core.RunSummary, error) {
	query := `
	SELECT run_id, lineage_id, intent, best_pattern_id, best_generation,
	       best_origin, best_composite, history, created_at
	FROM run_summaries
	`
	var args []interface{}
	if lineageID != "" {
		query += " WHERE lineage_id = ?"
		args = append(args, lineageID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []core.RunSummary
	for rows.Next() {
		var (
			s       core.RunSummary
			origin  string
			history string
		)
		err := rows.Scan(
			&s.RunID,
			&s.LineageID,
			&s.Intent,
			&s.Best.PatternID,
			&s.Best.Generation,
			&origin,
			&s.Best.Composite,
			&history,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Best.Origin = core.Origin(origin)
		s.Best.LineageID = s.LineageID
		if err := json.Unmarshal([]byte(history), &s.History); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close closes the underlying database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
