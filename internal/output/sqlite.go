package output

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	command      TEXT NOT NULL,
	computer     TEXT NOT NULL,
	collected_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cells (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(run_id),
	command    TEXT NOT NULL,
	source     TEXT NOT NULL,
	row_index  INTEGER NOT NULL,
	"column"   TEXT NOT NULL,
	kind       TEXT NOT NULL,
	value      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cells_run ON cells(run_id);
CREATE INDEX IF NOT EXISTS idx_cells_source ON cells(source);
`

// SQLiteWriter exports reports into a SQLite database, one row per cell.
// Several runs can share one database file.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database at path and applies the
// schema.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

// Write stores rep in a single transaction.
func (w *SQLiteWriter) Write(ctx context.Context, rep Report) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, command, computer, collected_at) VALUES (?, ?, ?, ?)`,
		rep.RunID, rep.Command, rep.Computer, rep.CollectedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (run_id, command, source, row_index, "column", kind, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, table := range rep.Tables {
		for i, row := range table.Rows {
			for _, col := range row.Columns() {
				v, _ := row.Get(col)
				if _, err := stmt.ExecContext(ctx,
					rep.RunID, rep.Command, table.Source, i, col, v.Kind().String(), v.String(),
				); err != nil {
					return fmt.Errorf("insert cell %s[%d].%s: %w", table.Source, i, col, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CellCount returns the number of cells stored for runID.
func (w *SQLiteWriter) CellCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cells WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cells: %w", err)
	}
	return n, nil
}

// DB returns the underlying database for direct queries.
func (w *SQLiteWriter) DB() *sql.DB {
	return w.db
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
