package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Search is a case-insensitive substring match over title and content where
// every query word must occur; relevance is the number of occurrences.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	roots     map[string]string
	order     []string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		roots:     make(map[string]string),
	}
}

// BeginBatch starts a batch that is applied on Commit.
func (s *DocumentStore) BeginBatch(_ context.Context, root string) (driven.DocumentBatch, error) {
	return &documentBatch{store: s, root: root}, nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Count returns the number of stored documents.
func (s *DocumentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// ListIDs returns the IDs of documents written under root.
func (s *DocumentStore) ListIDs(_ context.Context, root string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, r := range s.roots {
		if r == root {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes documents by ID.
func (s *DocumentStore) Delete(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, id := range ids {
		if _, ok := s.documents[id]; ok {
			delete(s.documents, id)
			delete(s.roots, id)
			removed++
		}
	}
	if removed > 0 {
		s.order = s.order[:0]
		for id := range s.documents {
			s.order = append(s.order, id)
		}
		sort.Strings(s.order)
	}
	return removed, nil
}

// Search matches every query word as a substring of title or content.
func (s *DocumentStore) Search(_ context.Context, q driven.FTSQuery) ([]driven.Hit, error) {
	if strings.Count(q.Match, `"`)%2 != 0 || strings.Count(q.Match, "(") != strings.Count(q.Match, ")") {
		return nil, fmt.Errorf("%w: unbalanced expression %q", domain.ErrMalformedQuery, q.Match)
	}

	words := strings.Fields(strings.ToLower(strings.NewReplacer(`"`, " ", "(", " ", ")", " ").Replace(q.Match)))
	hits := []driven.Hit{}
	if len(words) == 0 {
		return hits, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = domain.MaxSearchResults
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		doc := s.documents[id]
		title, content := strings.ToLower(doc.Title), strings.ToLower(doc.Content)

		relevance := 0.0
		matched := true
		for _, w := range words {
			n := strings.Count(title, w) + strings.Count(content, w)
			if n == 0 {
				matched = false
				break
			}
			relevance += float64(n)
		}
		if !matched {
			continue
		}

		hits = append(hits, driven.Hit{
			ID:        doc.ID,
			Path:      doc.Path,
			Title:     doc.Title,
			Preview:   preview(doc.Content, words[0], q),
			Relevance: relevance,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Relevance > hits[j].Relevance
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// preview wraps the first occurrence of word in the highlight markers.
func preview(content, word string, q driven.FTSQuery) string {
	idx := strings.Index(strings.ToLower(content), word)
	if idx < 0 {
		return content
	}
	open, closing := q.HighlightOpen, q.HighlightClose
	if open == "" && closing == "" {
		open, closing = "[", "]"
	}
	end := idx + len(word)
	return content[:idx] + open + content[idx:end] + closing + content[end:]
}

func (s *DocumentStore) apply(root string, docs []domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if _, exists := s.documents[doc.ID]; !exists {
			s.order = append(s.order, doc.ID)
		}
		s.documents[doc.ID] = doc
		s.roots[doc.ID] = root
	}
	sort.Strings(s.order)
}

// documentBatch stages upserts until Commit.
type documentBatch struct {
	store   *DocumentStore
	root    string
	pending []domain.Document
	done    bool
}

func (b *documentBatch) Upsert(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
	}
	b.pending = append(b.pending, *doc)
	return nil
}

func (b *documentBatch) Commit() error {
	if b.done {
		return nil
	}
	b.done = true
	b.store.apply(b.root, b.pending)
	return nil
}

func (b *documentBatch) Rollback() error {
	b.done = true
	b.pending = nil
	return nil
}
