package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pharmaseek/pharmaseek/internal/results"
)

// CSVSink writes the output set to a comma-delimited file.
type CSVSink struct {
	path string
}

// NewCSV creates a CSV sink writing to path.
func NewCSV(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Flush writes header plus one record per row, replacing any prior file.
func (s *CSVSink) Flush(rows []results.Row) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(s.path) //#nosec G304 -- CLI writes to user-specified output file
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.SearchSubstance,
			r.ProductName,
			r.MAHolder,
			r.Manufacturer,
			r.PDFFile,
			r.DetailURL,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
