// Package results holds the output records produced by a scrape run.
package results

import (
	"regexp"
	"strings"
)

// NotFound is the placeholder persisted when a field or document could not
// be resolved. Fields are never filled with guessed values.
const NotFound = "Not Found"

// Row is one finalized output record. Rows are never mutated after creation.
type Row struct {
	SearchSubstance string `db:"search_substance"`
	ProductName     string `db:"product_name"`
	MAHolder        string `db:"ma_holder"`
	Manufacturer    string `db:"manufacturer"`
	PDFFile         string `db:"pdf_file"`
	DetailURL       string `db:"detail_url"`
}

// Set is an ordered, append-only sequence of rows. Each run invocation owns
// its own Set; callers merge Sets rather than sharing one accumulator.
type Set struct {
	rows []Row
}

// Append adds a row to the set.
func (s *Set) Append(r Row) {
	s.rows = append(s.rows, r)
}

// Merge appends every row of other, preserving order.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	s.rows = append(s.rows, other.rows...)
}

// Rows returns the rows in append order.
func (s *Set) Rows() []Row {
	return s.rows
}

// Len returns the number of rows.
func (s *Set) Len() int {
	return len(s.rows)
}

// Or returns v unless it is empty, in which case it returns fallback.
func Or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Found reports whether v carries a real value.
func Found(v string) bool {
	return strings.TrimSpace(v) != "" && v != NotFound
}

// Summary describes the outcome of a whole run across substances.
type Summary struct {
	Rows         int
	ZeroResults  []string // substances that yielded no rows
	FailedRuns   []string // substances whose run aborted
	ItemsSkipped int
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFileName strips characters unsuitable for a file name component.
func SafeFileName(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	return unsafeFileChars.ReplaceAllString(s, "")
}
