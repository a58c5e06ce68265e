// Package traverse drives a registry search and walks its result listing:
// search, enumerate items by position, open each one, extract fields,
// download the leaflet, and append rows to a run-owned output set.
//
// Result items are addressed by (listing URL, index), never by element
// identity: navigating into a detail page and back invalidates every
// previously located element, so each iteration re-enumerates from
// scratch and tolerates the listing changing size in the meantime.
package traverse

import "errors"

// Run-level failures. These abort the substance run; per-item failures
// never do.
var (
	// ErrSearchInputNotFound means no search control could be located
	// within the bounded wait.
	ErrSearchInputNotFound = errors.New("search input not found")

	// ErrNoResults means the result listing never appeared. Callers treat
	// it as zero results, not a crash.
	ErrNoResults = errors.New("no results or listing timed out")
)

// SkipReason classifies why one result item was passed over. Skips are
// contained at the item level: the loop logs them and continues.
type SkipReason string

const (
	SkipItemOpenFailed SkipReason = "item_open_failed"
	SkipDetailNotReady SkipReason = "detail_not_ready"
	SkipIndexDrift     SkipReason = "index_drift"
)
