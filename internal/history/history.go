// Package history persists an additive, append-only record of
// completed cases across runs in a SQLite database, so that trends
// can be queried across time without disturbing the JSON stats/report
// contract.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/timexceed/testa-go/internal/reportio"
)

// DB wraps a history database connection.
type DB struct {
	conn *sql.DB
	Path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT NOT NULL,
	case_name  TEXT NOT NULL,
	result     TEXT NOT NULL,
	duration_s REAL NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_case_name ON runs(case_name);
CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);
`

// Open opens (creating if needed) a history database at path, with
// WAL mode and foreign keys enabled.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Row is one completed case observation, as stored in and returned
// from the history database.
type Row struct {
	RunID      string
	CaseName   string
	Result     string
	DurationS  float64
	RecordedAt time.Time
}

// Append inserts one row per record for runID, stamped with now. It
// is additive only: it never mutates stats.json or report.json, and a
// failure here is a non-fatal warning to the caller.
func Append(d *DB, runID string, records []reportio.ReportRecord, now time.Time) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning history transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO runs (run_id, case_name, result, duration_s, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		dur, err := time.ParseDuration(r.Duration)
		if err != nil {
			dur = 0
		}
		if _, err := stmt.Exec(runID, r.Name, r.Result, dur.Seconds(), now.Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting history row for %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history transaction: %w", err)
	}
	return nil
}

func scanRow(scanner interface{ Scan(dest ...any) error }) (Row, error) {
	var r Row
	var unix int64
	err := scanner.Scan(&r.RunID, &r.CaseName, &r.Result, &r.DurationS, &unix)
	if err != nil {
		return Row{}, err
	}
	r.RecordedAt = time.Unix(unix, 0).UTC()
	return r, nil
}

// Recent returns the most recent rows for a single case, newest
// first, bounded by limit.
func (d *DB) Recent(caseName string, limit int) ([]Row, error) {
	rows, err := d.conn.Query(`
		SELECT run_id, case_name, result, duration_s, recorded_at
		FROM runs WHERE case_name = ?
		ORDER BY recorded_at DESC LIMIT ?
	`, caseName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent history for %q: %w", caseName, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSummary aggregates one run's case outcomes into pass/fail
// counts, for trend reporting across runs rather than per-case
// lookups.
type RunSummary struct {
	RunID      string
	RecordedAt time.Time
	Passed     int
	Failed     int
	Total      int
}

// RunsSince returns one RunSummary per run_id recorded at or after
// since, oldest first. PASS and SKIP count toward Passed; FAILED and
// TIMEOUT count toward Failed, matching the collector's partitioning.
func (d *DB) RunsSince(since time.Time) ([]RunSummary, error) {
	rows, err := d.conn.Query(`
		SELECT
			run_id,
			MIN(recorded_at) AS recorded_at,
			SUM(CASE WHEN result IN ('PASS', 'SKIP') THEN 1 ELSE 0 END) AS passed,
			SUM(CASE WHEN result IN ('FAILED', 'TIMEOUT') THEN 1 ELSE 0 END) AS failed,
			COUNT(*) AS total
		FROM runs
		WHERE recorded_at >= ?
		GROUP BY run_id
		ORDER BY recorded_at ASC
	`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying history since %s: %w", since, err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var unix int64
		if err := rows.Scan(&s.RunID, &unix, &s.Passed, &s.Failed, &s.Total); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		s.RecordedAt = time.Unix(unix, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
