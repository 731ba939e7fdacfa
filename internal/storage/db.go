package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pricetags/internal"
)

// DB is the load audit log. It records what each load produced; label
// records themselves are never stored.
type DB struct {
	conn *sql.DB
}

type RunRow struct {
	ID        int
	TraceID   string
	Source    string
	Rows      int
	Records   int
	Counts    map[string]int
	TimingsMs map[string]float64
	CreatedAt string
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL UNIQUE,
  source TEXT NOT NULL,
  rowCount INTEGER NOT NULL,
  recordCount INTEGER NOT NULL,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_diagnostics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  seq INTEGER NOT NULL,
  kind TEXT NOT NULL,
  line INTEGER,
  col INTEGER,
  message TEXT NOT NULL,
  rowJson TEXT NOT NULL,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_run_diagnostics_runId ON run_diagnostics(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertRun stores the summary of one load and its diagnostics.
func (d *DB) InsertRun(ds *internal.Dataset, timings map[string]float64) (int64, error) {
	counts := map[string]int{"records": len(ds.Records)}
	for _, kind := range []internal.DiagnosticKind{internal.DiagnosticParse, internal.DiagnosticValidation, internal.DiagnosticEncoding} {
		counts[string(kind)] = 0
	}
	for _, diag := range ds.Diagnostics {
		counts[string(diag.Kind)]++
	}
	countsJSON, _ := json.Marshal(counts)
	timingsJSON, _ := json.Marshal(timings)

	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`
INSERT INTO runs (traceId, source, rowCount, recordCount, countsJson, timingsJson)
VALUES (?, ?, ?, ?, ?, ?)
`, ds.TraceID, ds.Source, len(ds.Rows), len(ds.Records), string(countsJSON), string(timingsJSON))
	if err != nil {
		return 0, err
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO run_diagnostics (runId, seq, kind, line, col, message, rowJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, diag := range ds.Diagnostics {
		rowJSON, _ := json.Marshal(diag.Row)
		if _, err := stmt.Exec(runID, i, string(diag.Kind), diag.Line, diag.Column, diag.Message, string(rowJSON)); err != nil {
			return 0, err
		}
	}

	return runID, tx.Commit()
}

func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, traceId, source, rowCount, recordCount, countsJson, timingsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		var countsJSON, timingsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Source, &row.Rows, &row.Records, &countsJSON, &timingsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		_ = json.Unmarshal([]byte(timingsJSON), &row.TimingsMs)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetRunByTraceID(traceID string) (*RunRow, error) {
	var row RunRow
	var countsJSON, timingsJSON string
	err := d.conn.QueryRow(`
SELECT id, traceId, source, rowCount, recordCount, countsJson, timingsJson, createdAt
FROM runs WHERE traceId = ?
`, traceID).Scan(&row.ID, &row.TraceID, &row.Source, &row.Rows, &row.Records, &countsJSON, &timingsJSON, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
	_ = json.Unmarshal([]byte(timingsJSON), &row.TimingsMs)
	return &row, nil
}

func (d *DB) ListRunDiagnostics(runID int) ([]internal.Diagnostic, error) {
	rows, err := d.conn.Query(`
SELECT kind, line, col, message, rowJson
FROM run_diagnostics WHERE runId = ? ORDER BY seq ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Diagnostic
	for rows.Next() {
		var diag internal.Diagnostic
		var kind, rowJSON string
		if err := rows.Scan(&kind, &diag.Line, &diag.Column, &diag.Message, &rowJSON); err != nil {
			return nil, err
		}
		diag.Kind = internal.DiagnosticKind(kind)
		_ = json.Unmarshal([]byte(rowJSON), &diag.Row)
		out = append(out, diag)
	}
	return out, rows.Err()
}
