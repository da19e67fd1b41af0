package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// ftsOperatorChars are characters with syntactic meaning in an FTS5 query.
// A word containing any of them is passed through untouched.
const ftsOperatorChars = `"()*^:{}+`

// ftsKeywords are the FTS5 operators recognised as bare words.
var ftsKeywords = map[string]bool{
	"AND":  true,
	"OR":   true,
	"NOT":  true,
	"NEAR": true,
}

// PrepareMatch turns user text into an FTS5 MATCH expression.
//
// Words made only of FTS5 bareword characters, operator keywords and words
// carrying operator characters are kept verbatim, so the full query syntax
// stays available and malformed expressions are still rejected by FTS5.
// Any other word (for example "Q1-rollout") is wrapped in double quotes so
// it searches as a literal string instead of failing to parse.
func PrepareMatch(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if needsQuoting(w) {
			words[i] = `"` + w + `"`
		}
	}
	return strings.Join(words, " ")
}

func needsQuoting(word string) bool {
	if ftsKeywords[word] || strings.ContainsAny(word, ftsOperatorChars) {
		return false
	}
	for _, r := range word {
		if !isBareword(r) {
			return true
		}
	}
	return false
}

// isBareword reports whether r may appear in an unquoted FTS5 string.
func isBareword(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == 0x1a:
		return true
	case r > 127:
		return true
	default:
		return false
	}
}

// isQueryError reports whether a SQLite error was raised by the FTS5 query
// parser rather than by the storage layer.
func isQueryError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5:") ||
		strings.Contains(msg, "unterminated string") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "unknown special query")
}

func wrapQueryError(err error, op string) error {
	if isQueryError(err) {
		return fmt.Errorf("%w: %w", domain.ErrMalformedQuery, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

const searchSQL = `
	SELECT d.id, d.path, d.title,
		snippet(documents_fts, 1, ?, ?, ?, ?) AS preview,
		bm25(documents_fts, ?, 1.0, 1.0) AS score
	FROM documents_fts
	JOIN documents d ON d.seq = documents_fts.rowid
	WHERE documents_fts MATCH ?
	ORDER BY score
	LIMIT ?
`

// Search runs a full-text query and returns hits in relevance order.
func (s *documentStore) Search(ctx context.Context, q driven.FTSQuery) ([]driven.Hit, error) {
	match := PrepareMatch(q.Match)
	if match == "" {
		return []driven.Hit{}, nil
	}

	q = withQueryDefaults(q)

	rows, err := s.store.db.QueryContext(ctx, searchSQL,
		q.HighlightOpen, q.HighlightClose, q.Ellipsis, q.SnippetTokens,
		q.TitleWeight, match, q.Limit)
	if err != nil {
		return nil, wrapQueryError(err, "searching documents")
	}
	defer rows.Close()

	hits := []driven.Hit{}
	for rows.Next() {
		var h driven.Hit
		var score float64
		if err := rows.Scan(&h.ID, &h.Path, &h.Title, &h.Preview, &score); err != nil {
			return nil, fmt.Errorf("%w: scanning hit: %w", domain.ErrStorage, err)
		}
		// bm25 is lower-is-better; flip it so callers see higher-is-better.
		h.Relevance = -score
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err, "iterating hits")
	}

	return hits, nil
}

func withQueryDefaults(q driven.FTSQuery) driven.FTSQuery {
	if q.Limit <= 0 {
		q.Limit = domain.MaxSearchResults
	}
	if q.TitleWeight <= 0 {
		q.TitleWeight = domain.DefaultTitleWeight
	}
	if q.HighlightOpen == "" && q.HighlightClose == "" {
		q.HighlightOpen = domain.DefaultHighlightOpen
		q.HighlightClose = domain.DefaultHighlightClose
	}
	if q.Ellipsis == "" {
		q.Ellipsis = domain.DefaultHighlightEllipse
	}
	if q.SnippetTokens < 1 {
		q.SnippetTokens = domain.DefaultSnippetTokens
	}
	if q.SnippetTokens > domain.MaxSnippetTokens {
		q.SnippetTokens = domain.MaxSnippetTokens
	}
	return q
}
