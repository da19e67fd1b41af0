package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// usageStore implements driven.UsageStore.
type usageStore struct {
	store *Store
}

var _ driven.UsageStore = (*usageStore)(nil)

// RecordAccess increments the counter for itemID, creating it on first access.
func (s *usageStore) RecordAccess(ctx context.Context, itemID string, at time.Time) error {
	if itemID == "" {
		return fmt.Errorf("%w: empty item id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO usage (item_id, usage_count, last_accessed)
		VALUES (?, 1, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			usage_count = usage.usage_count + 1,
			last_accessed = excluded.last_accessed
	`, itemID, at.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: recording access: %w", domain.ErrStorage, err)
	}
	return nil
}

// Get retrieves the usage record for itemID.
func (s *usageStore) Get(ctx context.Context, itemID string) (*domain.UsageRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT item_id, usage_count, last_accessed FROM usage WHERE item_id = ?
	`, itemID)

	rec, err := scanUsage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning usage: %w", domain.ErrStorage, err)
	}
	return rec, nil
}

// GetMany retrieves usage records for the given IDs.
func (s *usageStore) GetMany(ctx context.Context, itemIDs []string) (map[string]domain.UsageRecord, error) {
	result := make(map[string]domain.UsageRecord, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	//nolint:gosec // G202: placeholders only, values are bound.
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT item_id, usage_count, last_accessed FROM usage
		WHERE item_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying usage: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning usage: %w", domain.ErrStorage, err)
		}
		result[rec.ItemID] = *rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating usage: %w", domain.ErrStorage, err)
	}
	return result, nil
}

// Count returns the number of usage records.
func (s *usageStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting usage: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// Top returns the n most used records, most used first.
func (s *usageStore) Top(ctx context.Context, n int) ([]domain.UsageRecord, error) {
	if n <= 0 {
		return []domain.UsageRecord{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT item_id, usage_count, last_accessed FROM usage
		ORDER BY usage_count DESC, last_accessed DESC, item_id
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: querying usage: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	records := []domain.UsageRecord{}
	for rows.Next() {
		rec, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning usage: %w", domain.ErrStorage, err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating usage: %w", domain.ErrStorage, err)
	}
	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUsage(row rowScanner) (*domain.UsageRecord, error) {
	var rec domain.UsageRecord
	var lastAccessed sql.NullInt64

	if err := row.Scan(&rec.ItemID, &rec.UsageCount, &lastAccessed); err != nil {
		return nil, err
	}
	if lastAccessed.Valid {
		rec.LastAccessed = fromUnixNano(lastAccessed.Int64)
	}
	return &rec, nil
}
