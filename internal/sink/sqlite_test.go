package sink

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pharmaseek/pharmaseek/internal/results"
)

func TestSQLiteSink_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")

	if err := NewSQLite(path).Flush(sampleRows()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var rows []results.Row
	if err := db.Select(&rows, "SELECT * FROM "+TableName+" ORDER BY rowid"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].MAHolder != "Mylan Italia S.r.l." {
		t.Errorf("ma_holder = %q", rows[0].MAHolder)
	}
	if rows[1].Manufacturer != results.NotFound {
		t.Errorf("manufacturer = %q, want placeholder", rows[1].Manufacturer)
	}
}

func TestSQLiteSink_FlushReplacesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	sink := NewSQLite(path)

	if err := sink.Flush(sampleRows()); err != nil {
		t.Fatal(err)
	}
	if err := sink.Flush(sampleRows()[:1]); err != nil {
		t.Fatal(err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM "+TableName); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, a second flush must replace prior rows", count)
	}
}
