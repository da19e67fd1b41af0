package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchCacheSize is the number of distinct queries kept in the result cache.
const DefaultSearchCacheSize = 128

// SearchService runs full-text queries against the document store and
// ranks the hits with the configured scorer.
type SearchService struct {
	docStore   driven.DocumentStore
	usageStore driven.UsageStore
	settings   domain.SearchSettings
	scoring    ScoringConfig
	cache      *lru.Cache[string, []domain.SearchResult]
	now        func() time.Time

	// generations, when set, lets writes from other processes evict the
	// cache. seen is the generation the cached results were read under.
	generations driven.GenerationSource
	seen        atomic.Int64
}

// NewSearchService creates a new search service.
// The usageStore parameter is optional (can be nil); without it the
// usage-aware ranking degrades to pure relevance.
func NewSearchService(
	docStore driven.DocumentStore,
	usageStore driven.UsageStore,
	settings domain.SearchSettings,
) *SearchService {
	settings.Normalise()
	cache, _ := lru.New[string, []domain.SearchResult](DefaultSearchCacheSize)
	return &SearchService{
		docStore:   docStore,
		usageStore: usageStore,
		settings:   settings,
		scoring:    DefaultScoringConfig(),
		cache:      cache,
		now:        time.Now,
	}
}

// SetScoringConfig replaces the usage-aware scorer weights.
func (s *SearchService) SetScoringConfig(cfg ScoringConfig) {
	s.scoring = cfg
	s.cache.Purge()
}

// SetGenerationSource makes every search check the store's write counter
// and drop cached results when another writer moved it.
func (s *SearchService) SetGenerationSource(src driven.GenerationSource) {
	s.generations = src
	s.seen.Store(-1)
	s.cache.Purge()
}

// SetClock replaces the clock used for recency scoring.
func (s *SearchService) SetClock(now func() time.Time) {
	s.now = now
}

// Invalidate drops every cached result.
func (s *SearchService) Invalidate() {
	s.cache.Purge()
}

// Search runs query against the document store. An empty query returns
// an empty result set. Rejected query expressions return an error
// wrapping domain.ErrMalformedQuery.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := s.effectiveLimit(opts)
	ranking := s.effectiveRanking(opts)
	useUsage := ranking.UsesUsage() && s.usageStore != nil
	logger.Debug("Limit: %d, ranking: %s", limit, ranking.Description())

	key := cacheKey(query, limit, ranking)
	cacheable := s.syncGeneration(ctx)
	if cacheable {
		if cached, ok := s.cache.Get(key); ok {
			logger.Debug("Cache hit: %d results", len(cached))
			return cloneResults(cached), nil
		}
	}

	// Fetch a wider window so usage boosts can promote lower-ranked hits
	fetch := limit
	if useUsage {
		fetch = limit * 2
	}
	logger.Debug("Internal limit: %d", fetch)

	hits, err := s.docStore.Search(ctx, driven.FTSQuery{
		Match:          query,
		Limit:          fetch,
		TitleWeight:    s.settings.TitleWeight,
		HighlightOpen:  s.settings.HighlightOpen,
		HighlightClose: s.settings.HighlightClose,
		Ellipsis:       s.settings.HighlightEllipsis,
		SnippetTokens:  s.settings.SnippetTokens,
	})
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Raw results: %d hits", len(hits))

	usage := s.lookupUsage(ctx, hits)
	results := NewScorer(ranking, s.scoring).Score(hits, usage, s.now())
	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Final results: %d", len(results))

	if cacheable {
		s.cache.Add(key, cloneResults(results))
	}
	return results, nil
}

// syncGeneration purges the cache when the store generation moved since
// the last search and reports whether results may be cached. The counter is
// read before the query runs, so a write racing the query still moves it
// past the value its results are cached under.
func (s *SearchService) syncGeneration(ctx context.Context) bool {
	if s.generations == nil {
		return true
	}

	gen, err := s.generations.Generation(ctx)
	if err != nil {
		logger.Warn("Reading store generation failed, bypassing cache: %v", err)
		s.cache.Purge()
		return false
	}

	if prev := s.seen.Swap(gen); prev != gen {
		logger.Debug("Store generation %d -> %d, dropping cached results", prev, gen)
		s.cache.Purge()
	}
	return true
}

func (s *SearchService) effectiveLimit(opts domain.SearchOptions) int {
	if opts.Limit <= 0 {
		opts.Limit = s.settings.Limit
	}
	return opts.EffectiveLimit()
}

func (s *SearchService) effectiveRanking(opts domain.SearchOptions) domain.RankingStrategy {
	if opts.Ranking.IsValid() {
		return opts.Ranking
	}
	return s.settings.Ranking
}

// lookupUsage fetches usage records for the hits. Failures degrade to
// scoring without usage.
func (s *SearchService) lookupUsage(ctx context.Context, hits []driven.Hit) map[string]domain.UsageRecord {
	if s.usageStore == nil || len(hits) == 0 {
		return nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}

	usage, err := s.usageStore.GetMany(ctx, ids)
	if err != nil {
		logger.Warn("Usage lookup failed, ranking without usage: %v", err)
		return nil
	}
	return usage
}

func cacheKey(query string, limit int, ranking domain.RankingStrategy) string {
	return fmt.Sprintf("%s\x00%d\x00%s", query, limit, ranking)
}

func cloneResults(results []domain.SearchResult) []domain.SearchResult {
	return append(make([]domain.SearchResult, 0, len(results)), results...)
}
