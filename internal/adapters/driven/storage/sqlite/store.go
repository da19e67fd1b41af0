package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pigpen/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// DefaultDBName is the database file name inside the data directory.
const DefaultDBName = "pigpen.db"

// Store is a unified SQLite-based storage that provides access to
// the document, usage and index run stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at dbPath and applies pending
// migrations. If dbPath is empty, defaults to ~/.pigpen/data/pigpen.db.
// Opening an already initialised database is harmless.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: getting home directory: %w", domain.ErrStorage, err)
		}
		dbPath = filepath.Join(home, ".pigpen", "data", DefaultDBName)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStorage, err)
	}

	// Open database with WAL mode so searches can run while an index pass writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorage, err)
	}

	// modernc.org/sqlite only honours journal_mode reliably when issued as a statement
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrStorage, pragma, err)
		}
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStorage, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// UsageStore returns a UsageStore interface backed by this store.
func (s *Store) UsageStore() driven.UsageStore {
	return &usageStore{store: s}
}

// IndexRunStore returns an IndexRunStore interface backed by this store.
func (s *Store) IndexRunStore() driven.IndexRunStore {
	return &indexRunStore{store: s}
}

var _ driven.GenerationSource = (*Store)(nil)

// Generation returns the write counter maintained by triggers on the
// documents and usage tables.
func (s *Store) Generation(ctx context.Context) (int64, error) {
	var gen int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM store_generation WHERE id = 1").Scan(&gen)
	if err != nil {
		return 0, fmt.Errorf("%w: reading store generation: %w", domain.ErrStorage, err)
	}
	return gen, nil
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO schema_migrations (version) VALUES (?)", version,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const upsertDocumentSQL = `
	INSERT INTO documents (id, path, title, content, tags, root, indexed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		path = excluded.path,
		title = excluded.title,
		content = excluded.content,
		tags = excluded.tags,
		root = excluded.root,
		indexed_at = excluded.indexed_at
`

// BeginBatch opens a transaction and prepares the upsert statement once.
func (s *documentStore) BeginBatch(ctx context.Context, root string) (driven.DocumentBatch, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertDocumentSQL)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}

	return &documentBatch{tx: tx, stmt: stmt, root: root}, nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, title, content, tags, indexed_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// Count returns the number of stored documents.
func (s *documentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// ListIDs returns the IDs of documents written under root.
func (s *documentStore) ListIDs(ctx context.Context, root string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT id FROM documents WHERE root = ? ORDER BY id", root)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning id: %w", domain.ErrStorage, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %w", domain.ErrStorage, err)
	}

	return ids, nil
}

// Delete removes documents by ID in a single transaction.
func (s *documentStore) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM documents WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	removed := 0
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("%w: deleting document: %w", domain.ErrStorage, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return removed, nil
}

// documentBatch implements driven.DocumentBatch over one transaction.
type documentBatch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	root string
	done bool
}

var _ driven.DocumentBatch = (*documentBatch)(nil)

// Upsert inserts the document or replaces every field of the existing row.
func (b *documentBatch) Upsert(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
	}

	indexedAt := doc.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now()
	}

	if _, err := b.stmt.ExecContext(ctx, doc.ID, doc.Path, doc.Title, doc.Content,
		doc.TagString(), b.root, indexedAt.UnixNano()); err != nil {
		return fmt.Errorf("%w: upserting document: %w", domain.ErrStorage, err)
	}
	return nil
}

// Commit makes the batch durable.
func (b *documentBatch) Commit() error {
	if b.done {
		return nil
	}
	b.done = true
	b.stmt.Close()

	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return nil
}

// Rollback discards the batch.
func (b *documentBatch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	b.stmt.Close()

	if err := b.tx.Rollback(); err != nil {
		return fmt.Errorf("%w: rolling back transaction: %w", domain.ErrStorage, err)
	}
	return nil
}

func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var tags string
	var indexedAt int64

	if err := row.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Content, &tags, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStorage, err)
	}

	doc.Tags = domain.ParseTags(tags)
	doc.IndexedAt = fromUnixNano(indexedAt)

	return &doc, nil
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
