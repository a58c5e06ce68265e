package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pharmaseek/pharmaseek/internal/results"
)

func sampleRows() []results.Row {
	return []results.Row{
		{
			SearchSubstance: "ibuprofen",
			ProductName:     "Brufen 600mg",
			MAHolder:        "Mylan Italia S.r.l.",
			Manufacturer:    "FAMAR A.V.E.",
			PDFFile:         "outputs/ibuprofen_0.pdf",
			DetailURL:       "https://registry.test/detail/0",
		},
		{
			SearchSubstance: "ibuprofen",
			ProductName:     "Moment 200mg",
			MAHolder:        results.NotFound,
			Manufacturer:    results.NotFound,
			PDFFile:         results.NotFound,
			DetailURL:       "https://registry.test/detail/1",
		},
	}
}

func TestNew_Formats(t *testing.T) {
	dir := t.TempDir()

	if s, err := New(FormatCSV, filepath.Join(dir, "out.csv")); err != nil || s == nil {
		t.Errorf("New(csv) = %v, %v", s, err)
	}
	if s, err := New(FormatSQLite, filepath.Join(dir, "out.db")); err != nil || s == nil {
		t.Errorf("New(sqlite) = %v, %v", s, err)
	}
	if _, err := New(Format("parquet"), "out"); err == nil {
		t.Error("expected error for an unsupported format")
	}
}

func TestCSVSink_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := NewCSV(path).Flush(sampleRows()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	for i, col := range Columns {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	if records[1][2] != "Mylan Italia S.r.l." {
		t.Errorf("row 1 ma_holder = %q", records[1][2])
	}
	if records[2][3] != results.NotFound {
		t.Errorf("row 2 manufacturer = %q, want placeholder", records[2][3])
	}
}

func TestCSVSink_FlushReplacesPriorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSV(path)

	if err := sink.Flush(sampleRows()); err != nil {
		t.Fatal(err)
	}
	if err := sink.Flush(sampleRows()[:1]); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, a second flush must replace the file", len(records))
	}
}

func TestCSVSink_FlushEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := NewCSV(path).Flush(nil); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("empty set still writes the header")
	}
}
