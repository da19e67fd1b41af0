package domain

import "strings"

const unknownDescription = "Unknown"

// MaxSearchResults is the hard cap on results returned by a single search.
const MaxSearchResults = 25

// RankingStrategy selects how engine relevance is turned into the final score.
type RankingStrategy string

// Available ranking strategies.
const (
	// RankingPureRelevance uses the full-text engine's relevance as the score.
	RankingPureRelevance RankingStrategy = "relevance"

	// RankingRelevancePlusUsage boosts relevance by access frequency and recency.
	RankingRelevancePlusUsage RankingStrategy = "relevance_usage"
)

// IsValid returns true if the ranking strategy is recognised.
func (r RankingStrategy) IsValid() bool {
	switch r {
	case RankingPureRelevance, RankingRelevancePlusUsage:
		return true
	default:
		return false
	}
}

// UsesUsage returns true if the strategy consults usage records.
func (r RankingStrategy) UsesUsage() bool {
	return r == RankingRelevancePlusUsage
}

// String returns the string representation.
func (r RankingStrategy) String() string {
	return string(r)
}

// Description returns a human-readable description of the strategy.
func (r RankingStrategy) Description() string {
	switch r {
	case RankingPureRelevance:
		return "Relevance (bm25 over trigrams)"
	case RankingRelevancePlusUsage:
		return "Relevance + usage (frecency boost)"
	default:
		return unknownDescription
	}
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Values outside 1..MaxSearchResults
	// are clamped.
	Limit int

	// Ranking overrides the configured ranking strategy when set.
	Ranking RankingStrategy
}

// EffectiveLimit clamps the requested limit to 1..MaxSearchResults.
// Zero or negative means the maximum.
func (o SearchOptions) EffectiveLimit() int {
	if o.Limit <= 0 || o.Limit > MaxSearchResults {
		return MaxSearchResults
	}
	return o.Limit
}

// SearchResult represents a single search hit.
// Score is "higher is better"; results are ordered by decreasing Score.
type SearchResult struct {
	// ID is the matched document's identity.
	ID string `json:"id"`

	// Path is the matched document's location.
	Path string `json:"path"`

	// Title is the matched document's title.
	Title string `json:"title"`

	// Preview is a short excerpt of the content around the match, with
	// highlight markers around matched spans and ellipsis markers where
	// the excerpt is truncated.
	Preview string `json:"preview"`

	// Score is the final ranking value after the scoring strategy.
	Score float64 `json:"score"`

	// Relevance is the engine's relevance (negated bm25) before scoring.
	Relevance float64 `json:"relevance"`

	// UsageCount is the document's recorded access count at query time.
	UsageCount int64 `json:"usage_count"`
}

// PreviewSpan is a run of preview text. Match is set for spans that were
// wrapped in highlight markers.
type PreviewSpan struct {
	Text  string
	Match bool
}

// SplitPreview splits a preview on its highlight markers. An open marker
// without a matching close marker is kept as plain text.
func SplitPreview(preview, open, closing string) []PreviewSpan {
	if open == "" || closing == "" {
		return []PreviewSpan{{Text: preview}}
	}

	var spans []PreviewSpan
	rest := preview
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(open):], closing)
		if end < 0 {
			break
		}
		if start > 0 {
			spans = append(spans, PreviewSpan{Text: rest[:start]})
		}
		match := rest[start+len(open) : start+len(open)+end]
		if match != "" {
			spans = append(spans, PreviewSpan{Text: match, Match: true})
		}
		rest = rest[start+len(open)+end+len(closing):]
	}
	if rest != "" || len(spans) == 0 {
		spans = append(spans, PreviewSpan{Text: rest})
	}
	return spans
}
