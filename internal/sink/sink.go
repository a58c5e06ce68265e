// Package sink flushes a finished output set to a persistent tabular
// store. Flushing happens once, at the end of a run, and replaces any
// prior output of the same name; there is no intermediate durability.
package sink

import (
	"fmt"

	"github.com/pharmaseek/pharmaseek/internal/results"
)

// Format represents supported sink kinds.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// Sink persists a completed output set.
type Sink interface {
	// Flush writes all rows, replacing prior output of the same name.
	Flush(rows []results.Row) error
}

// New creates a sink of the given format writing to path.
func New(format Format, path string) (Sink, error) {
	switch format {
	case FormatCSV:
		return NewCSV(path), nil
	case FormatSQLite:
		return NewSQLite(path), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Columns is the output column order shared by all sinks.
var Columns = []string{
	"search_substance",
	"product_name",
	"ma_holder",
	"manufacturer",
	"pdf_file",
	"detail_url",
}
