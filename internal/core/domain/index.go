package domain

import "time"

// IndexReport summarises one full index pass over a vault.
type IndexReport struct {
	// RunID uniquely identifies the pass.
	RunID string

	// Root is the vault root that was scanned.
	Root string

	// Indexed is the number of documents upserted. This is the count
	// reported to callers of index_vault.
	Indexed int

	// Skipped is the number of visited paths that produced no document.
	Skipped int

	// ReadFailures is the number of documents written with empty content
	// because their body could not be read or decoded.
	ReadFailures int

	// Removed is the number of orphaned rows pruned after the pass.
	Removed int

	// StartedAt is when the pass began.
	StartedAt time.Time

	// FinishedAt is when the pass committed.
	FinishedAt time.Time

	// Items holds the skipped and read-failed scan items for inspection.
	Items []ScanItem
}

// Duration returns how long the pass took.
func (r IndexReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StoreStats summarises the contents of the document store.
type StoreStats struct {
	// Documents is the number of indexed documents.
	Documents int

	// UsageRecords is the number of documents with recorded access.
	UsageRecords int

	// LastRun is the most recent index pass, if any.
	LastRun *IndexReport
}
