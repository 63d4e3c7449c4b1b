package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"cmdjob/internal"
)

type DB struct {
	conn *sql.DB
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
  traceId TEXT NOT NULL,
  jobNumber TEXT NOT NULL,
  jobFolder TEXT NOT NULL,
  status TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_traceId ON runs(traceId);

CREATE TABLE IF NOT EXISTS po_results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  sourceDir TEXT NOT NULL,
  poNumber TEXT,
  lotNumber TEXT,
  status TEXT NOT NULL,
  itemCount INTEGER NOT NULL DEFAULT 0,
  warningsJson TEXT NOT NULL DEFAULT '[]',
  errorText TEXT,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_po_results_runId ON po_results(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(row internal.RunRow) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO runs (traceId, jobNumber, jobFolder, status, countsJson, timingsJson)
VALUES (?, ?, ?, ?, ?, ?)
`, row.TraceID, row.JobNumber, row.JobFolder, row.Status, row.CountsJSON, row.TimingsJSON)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertPOResult(row internal.PORow) error {
	_, err := d.conn.Exec(`
INSERT INTO po_results (runId, sourceDir, poNumber, lotNumber, status, itemCount, warningsJson, errorText)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, row.RunID, row.SourceDir, row.PONumber, row.LotNumber, row.Status, row.ItemCount, row.WarningsJSON, row.ErrorText)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, jobNumber, jobFolder, status, countsJson, timingsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.JobNumber, &row.JobFolder, &row.Status, &row.CountsJSON, &row.TimingsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetRunByTrace(traceID string) (*internal.RunRow, error) {
	var row internal.RunRow
	err := d.conn.QueryRow(`
SELECT id, traceId, jobNumber, jobFolder, status, countsJson, timingsJson, createdAt
FROM runs WHERE traceId = ? ORDER BY id DESC LIMIT 1
`, traceID).Scan(&row.ID, &row.TraceID, &row.JobNumber, &row.JobFolder, &row.Status, &row.CountsJSON, &row.TimingsJSON, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListPOResults(runID int64) ([]internal.PORow, error) {
	rows, err := d.conn.Query(`
SELECT id, runId, sourceDir, poNumber, lotNumber, status, itemCount, warningsJson, errorText
FROM po_results WHERE runId = ? ORDER BY sourceDir ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.PORow
	for rows.Next() {
		var row internal.PORow
		var poNumber, lotNumber, errorText sql.NullString
		if err := rows.Scan(&row.ID, &row.RunID, &row.SourceDir, &poNumber, &lotNumber, &row.Status, &row.ItemCount, &row.WarningsJSON, &errorText); err != nil {
			return nil, err
		}
		row.PONumber = poNumber.String
		row.LotNumber = lotNumber.String
		row.ErrorText = errorText.String
		out = append(out, row)
	}
	return out, rows.Err()
}
