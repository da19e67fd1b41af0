package services

import (
	"math"
	"sort"
	"time"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// ScoringConfig tunes the usage-aware scorer.
type ScoringConfig struct {
	// FrequencyWeight scales the logarithmic boost from the access count.
	FrequencyWeight float64

	// RecencyWeight scales the boost from the last access time.
	RecencyWeight float64

	// HalfLife is the age at which the recency boost halves.
	HalfLife time.Duration
}

// DefaultScoringConfig returns the default usage-aware weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		FrequencyWeight: 0.5,
		RecencyWeight:   0.5,
		HalfLife:        7 * 24 * time.Hour,
	}
}

// Scorer turns engine hits into ordered search results.
type Scorer interface {
	// Score converts hits to results ordered by decreasing score. Hits with
	// equal scores keep their engine order.
	Score(hits []driven.Hit, usage map[string]domain.UsageRecord, now time.Time) []domain.SearchResult
}

// NewScorer returns the scorer for the given strategy. Unknown strategies
// fall back to pure relevance.
func NewScorer(strategy domain.RankingStrategy, cfg ScoringConfig) Scorer {
	if strategy.UsesUsage() {
		if cfg.HalfLife <= 0 {
			cfg.HalfLife = DefaultScoringConfig().HalfLife
		}
		return &usageScorer{cfg: cfg}
	}
	return relevanceScorer{}
}

// relevanceScorer uses the engine relevance unchanged.
type relevanceScorer struct{}

func (relevanceScorer) Score(
	hits []driven.Hit, usage map[string]domain.UsageRecord, _ time.Time,
) []domain.SearchResult {
	results := toResults(hits, usage)
	for i := range results {
		results[i].Score = results[i].Relevance
	}
	return results
}

// usageScorer boosts relevance by how often and how recently a document
// was opened.
type usageScorer struct {
	cfg ScoringConfig
}

func (u *usageScorer) Score(
	hits []driven.Hit, usage map[string]domain.UsageRecord, now time.Time,
) []domain.SearchResult {
	results := toResults(hits, usage)
	for i := range results {
		rec, ok := usage[results[i].ID]
		if !ok {
			results[i].Score = results[i].Relevance
			continue
		}
		results[i].Score = results[i].Relevance * u.frequencyBoost(rec) * u.recencyBoost(rec, now)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (u *usageScorer) frequencyBoost(rec domain.UsageRecord) float64 {
	return 1 + u.cfg.FrequencyWeight*math.Log1p(float64(rec.UsageCount))
}

func (u *usageScorer) recencyBoost(rec domain.UsageRecord, now time.Time) float64 {
	if rec.LastAccessed.IsZero() {
		return 1
	}
	age := now.Sub(rec.LastAccessed)
	if age < 0 {
		age = 0
	}
	return 1 + u.cfg.RecencyWeight*math.Exp2(-float64(age)/float64(u.cfg.HalfLife))
}

func toResults(hits []driven.Hit, usage map[string]domain.UsageRecord) []domain.SearchResult {
	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			ID:         hit.ID,
			Path:       hit.Path,
			Title:      hit.Title,
			Preview:    hit.Preview,
			Relevance:  hit.Relevance,
			UsageCount: usage[hit.ID].UsageCount,
		}
	}
	return results
}
