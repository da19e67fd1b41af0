package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// indexRunStore implements driven.IndexRunStore.
type indexRunStore struct {
	store *Store
}

var _ driven.IndexRunStore = (*indexRunStore)(nil)

// SaveRun stores the summary of a finished index pass.
// Skipped items are not persisted.
func (s *indexRunStore) SaveRun(ctx context.Context, r domain.IndexReport) error {
	if r.RunID == "" {
		return fmt.Errorf("%w: index run without id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_runs (id, root, started_at, finished_at, indexed, skipped, read_failed, removed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			root = excluded.root,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			indexed = excluded.indexed,
			skipped = excluded.skipped,
			read_failed = excluded.read_failed,
			removed = excluded.removed
	`, r.RunID, r.Root, r.StartedAt.UnixNano(), r.FinishedAt.UnixNano(),
		r.Indexed, r.Skipped, r.ReadFailures, r.Removed)
	if err != nil {
		return fmt.Errorf("%w: saving index run: %w", domain.ErrStorage, err)
	}
	return nil
}

// LastRun returns the most recently finished pass.
func (s *indexRunStore) LastRun(ctx context.Context) (*domain.IndexReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, root, started_at, finished_at, indexed, skipped, read_failed, removed
		FROM index_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`)

	var r domain.IndexReport
	var started, finished int64
	if err := row.Scan(&r.RunID, &r.Root, &started, &finished,
		&r.Indexed, &r.Skipped, &r.ReadFailures, &r.Removed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning index run: %w", domain.ErrStorage, err)
	}

	r.StartedAt = fromUnixNano(started)
	r.FinishedAt = fromUnixNano(finished)
	return &r, nil
}
