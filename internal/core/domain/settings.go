package domain

import "time"

// Defaults for configurable behaviour.
const (
	DefaultExtension        = ".md"
	DefaultMaxFileBytes     = 10 << 20
	DefaultHighlightOpen    = "<mark>"
	DefaultHighlightClose   = "</mark>"
	DefaultHighlightEllipse = "..."
	DefaultSnippetTokens    = 24
	MaxSnippetTokens        = 64
	DefaultTitleWeight      = 10.0
	DefaultDebounce         = 500 * time.Millisecond
)

// Settings contains all pigpen configuration.
type Settings struct {
	Vault   VaultSettings
	Storage StorageSettings
	Index   IndexSettings
	Search  SearchSettings
	Watch   WatchSettings
}

// VaultSettings identifies the default vault.
type VaultSettings struct {
	// Path is the vault root used when no path argument is given.
	Path string
}

// StorageSettings configures the document store location.
type StorageSettings struct {
	// DBPath is the SQLite file. Empty means the default data directory.
	DBPath string
}

// IndexSettings configures the vault scanner and indexer.
type IndexSettings struct {
	// Extensions lists the file extensions that qualify for indexing.
	Extensions []string

	// IncludeHidden indexes dot-files and dot-directories when true.
	IncludeHidden bool

	// MaxFileBytes caps the size of a file body that will be read.
	MaxFileBytes int64

	// Prune removes rows for files no longer present after a pass.
	Prune bool
}

// SearchSettings configures the query engine.
type SearchSettings struct {
	Limit             int
	Ranking           RankingStrategy
	HighlightOpen     string
	HighlightClose    string
	HighlightEllipsis string
	SnippetTokens     int
	TitleWeight       float64
}

// WatchSettings configures the filesystem watcher.
type WatchSettings struct {
	Debounce time.Duration
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Index: IndexSettings{
			Extensions:   []string{DefaultExtension},
			MaxFileBytes: DefaultMaxFileBytes,
			Prune:        true,
		},
		Search: SearchSettings{
			Limit:             MaxSearchResults,
			Ranking:           RankingPureRelevance,
			HighlightOpen:     DefaultHighlightOpen,
			HighlightClose:    DefaultHighlightClose,
			HighlightEllipsis: DefaultHighlightEllipse,
			SnippetTokens:     DefaultSnippetTokens,
			TitleWeight:       DefaultTitleWeight,
		},
		Watch: WatchSettings{
			Debounce: DefaultDebounce,
		},
	}
}

// Normalise clamps out-of-range values back into their valid ranges.
func (s *SearchSettings) Normalise() {
	if s.Limit <= 0 || s.Limit > MaxSearchResults {
		s.Limit = MaxSearchResults
	}
	if !s.Ranking.IsValid() {
		s.Ranking = RankingPureRelevance
	}
	if s.SnippetTokens < 1 {
		s.SnippetTokens = 1
	}
	if s.SnippetTokens > MaxSnippetTokens {
		s.SnippetTokens = MaxSnippetTokens
	}
	if s.TitleWeight <= 0 {
		s.TitleWeight = DefaultTitleWeight
	}
}
