package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pharmaseek/pharmaseek/internal/results"
)

// TableName is the single table holding scraped rows.
const TableName = "medicine_data"

const createTable = `
CREATE TABLE ` + TableName + ` (
	search_substance TEXT NOT NULL,
	product_name     TEXT NOT NULL,
	ma_holder        TEXT NOT NULL,
	manufacturer     TEXT NOT NULL,
	pdf_file         TEXT NOT NULL,
	detail_url       TEXT NOT NULL
)`

const insertRow = `
INSERT INTO ` + TableName + `
	(search_substance, product_name, ma_holder, manufacturer, pdf_file, detail_url)
VALUES
	(:search_substance, :product_name, :ma_holder, :manufacturer, :pdf_file, :detail_url)`

// SQLiteSink writes the output set to one table in an embedded database.
// The table is dropped and recreated each run, never appended across runs.
type SQLiteSink struct {
	path string
}

// NewSQLite creates a SQLite sink writing to the database at path.
func NewSQLite(path string) *SQLiteSink {
	return &SQLiteSink{path: path}
}

// Flush replaces the table with the given rows in a single transaction.
func (s *SQLiteSink) Flush(rows []results.Row) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + TableName); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.Exec(createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	for _, r := range rows {
		if _, err := tx.NamedExec(insertRow, r); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return tx.Commit()
}
