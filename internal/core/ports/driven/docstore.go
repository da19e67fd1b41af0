package driven

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// DocumentStore persists documents and answers full-text queries over them.
// Backed by SQLite with an FTS5 index.
type DocumentStore interface {
	// BeginBatch opens a write transaction with a prepared upsert. Rows
	// written through the batch are attributed to the vault root.
	// Exactly one of Commit or Rollback must be called on the result.
	BeginBatch(ctx context.Context, root string) (DocumentBatch, error)

	// Search runs a prepared full-text query and returns ranked hits.
	// Malformed expressions return an error wrapping domain.ErrMalformedQuery.
	Search(ctx context.Context, query FTSQuery) ([]Hit, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if no such document exists.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// ListIDs returns the IDs of documents written under root.
	ListIDs(ctx context.Context, root string) ([]string, error)

	// Delete removes documents by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) (int, error)
}

// DocumentBatch writes documents inside a single transaction.
type DocumentBatch interface {
	// Upsert inserts the document or fully replaces the row with the same ID.
	Upsert(ctx context.Context, doc *domain.Document) error

	// Commit makes every upsert in the batch durable.
	Commit() error

	// Rollback discards the batch. Calling it after Commit is a no-op.
	Rollback() error
}

// FTSQuery is a full-text query ready to hand to the store.
type FTSQuery struct {
	// Match is the raw user text. The store prepares it for its matcher.
	Match string

	// Limit caps the number of hits.
	Limit int

	// TitleWeight is the relevance multiplier applied to title matches.
	TitleWeight float64

	// HighlightOpen and HighlightClose wrap matched spans in the preview.
	HighlightOpen  string
	HighlightClose string

	// Ellipsis marks truncation in the preview.
	Ellipsis string

	// SnippetTokens is the preview length in tokens.
	SnippetTokens int
}

// Hit is one ranked match returned by the store.
type Hit struct {
	ID      string
	Path    string
	Title   string
	Preview string

	// Relevance is higher-is-better (negated bm25).
	Relevance float64
}
