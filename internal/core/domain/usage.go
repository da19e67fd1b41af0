package domain

import "time"

// UsageRecord holds access statistics for a document.
// Records are created lazily on first access and never deleted automatically.
type UsageRecord struct {
	// ItemID refers to Document.ID. Referential integrity is not enforced.
	ItemID string

	// UsageCount is incremented on every recorded access. It never decreases.
	UsageCount int64

	// LastAccessed is the time of the most recent recorded access.
	LastAccessed time.Time
}
