package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyVaultPath         = "vault.path"
	keyStorageDBPath     = "storage.db_path"
	keyIndexExtensions   = "index.extensions"
	keyIndexHidden       = "index.include_hidden"
	keyIndexMaxBytes     = "index.max_file_bytes"
	keyIndexPrune        = "index.prune"
	keySearchLimit       = "search.limit"
	keySearchRanking     = "search.ranking"
	keyHighlightOpen     = "search.highlight_open"
	keyHighlightClose    = "search.highlight_close"
	keyHighlightEllipsis = "search.highlight_ellipsis"
	keySnippetTokens     = "search.snippet_tokens"
	keyTitleWeight       = "search.title_weight"
	keyWatchDebounce     = "watch.debounce_ms"
)

// valueKind is the type a settings key is parsed as.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindFloat
	kindList
	kindRanking
)

var settingsKeys = []struct {
	key  string
	kind valueKind
}{
	{keyVaultPath, kindString},
	{keyStorageDBPath, kindString},
	{keyIndexExtensions, kindList},
	{keyIndexHidden, kindBool},
	{keyIndexMaxBytes, kindInt},
	{keyIndexPrune, kindBool},
	{keySearchLimit, kindInt},
	{keySearchRanking, kindRanking},
	{keyHighlightOpen, kindString},
	{keyHighlightClose, kindString},
	{keyHighlightEllipsis, kindString},
	{keySnippetTokens, kindInt},
	{keyTitleWeight, kindFloat},
	{keyWatchDebounce, kindInt},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Unset keys take their
// defaults and out-of-range search values are clamped.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Vault: domain.VaultSettings{
			Path: s.configStore.GetString(keyVaultPath),
		},
		Storage: domain.StorageSettings{
			DBPath: s.configStore.GetString(keyStorageDBPath),
		},
		Index: domain.IndexSettings{
			Extensions:    s.getStringSlice(keyIndexExtensions, defaults.Index.Extensions),
			IncludeHidden: s.getBool(keyIndexHidden, defaults.Index.IncludeHidden),
			MaxFileBytes:  int64(s.getInt(keyIndexMaxBytes, int(defaults.Index.MaxFileBytes))),
			Prune:         s.getBool(keyIndexPrune, defaults.Index.Prune),
		},
		Search: domain.SearchSettings{
			Limit:             s.getInt(keySearchLimit, defaults.Search.Limit),
			Ranking:           s.getRanking(defaults.Search.Ranking),
			HighlightOpen:     s.getString(keyHighlightOpen, defaults.Search.HighlightOpen),
			HighlightClose:    s.getString(keyHighlightClose, defaults.Search.HighlightClose),
			HighlightEllipsis: s.getString(keyHighlightEllipsis, defaults.Search.HighlightEllipsis),
			SnippetTokens:     s.getInt(keySnippetTokens, defaults.Search.SnippetTokens),
			TitleWeight:       s.getFloat(keyTitleWeight, defaults.Search.TitleWeight),
		},
		Watch: domain.WatchSettings{
			Debounce: time.Duration(s.getInt(keyWatchDebounce, int(defaults.Watch.Debounce.Milliseconds()))) *
				time.Millisecond,
		},
	}
	settings.Search.Normalise()

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyVaultPath, settings.Vault.Path},
		{keyStorageDBPath, settings.Storage.DBPath},
		{keyIndexExtensions, settings.Index.Extensions},
		{keyIndexHidden, settings.Index.IncludeHidden},
		{keyIndexMaxBytes, settings.Index.MaxFileBytes},
		{keyIndexPrune, settings.Index.Prune},
		{keySearchLimit, settings.Search.Limit},
		{keySearchRanking, settings.Search.Ranking.String()},
		{keyHighlightOpen, settings.Search.HighlightOpen},
		{keyHighlightClose, settings.Search.HighlightClose},
		{keyHighlightEllipsis, settings.Search.HighlightEllipsis},
		{keySnippetTokens, settings.Search.SnippetTokens},
		{keyTitleWeight, settings.Search.TitleWeight},
		{keyWatchDebounce, settings.Watch.Debounce.Milliseconds()},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetRanking updates the default ranking strategy.
func (s *SettingsService) SetRanking(strategy domain.RankingStrategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("%w: invalid ranking strategy: %s", domain.ErrInvalidInput, strategy)
	}
	return s.configStore.Set(keySearchRanking, strategy.String())
}

// SetVaultPath updates the default vault root.
func (s *SettingsService) SetVaultPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%w: vault path is empty", domain.ErrInvalidInput)
	}
	abs, err := domain.DocumentID(path)
	if err != nil {
		return fmt.Errorf("%w: resolving vault path: %w", domain.ErrInvalidInput, err)
	}
	return s.configStore.Set(keyVaultPath, abs)
}

// SetValue parses raw according to the key's type and persists it.
func (s *SettingsService) SetValue(key, raw string) error {
	for _, k := range settingsKeys {
		if k.key != key {
			continue
		}
		value, err := parseValue(k.kind, raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		return s.configStore.Set(key, value)
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Value returns the effective value of key, formatted for display.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keyVaultPath:
		return settings.Vault.Path, nil
	case keyStorageDBPath:
		return settings.Storage.DBPath, nil
	case keyIndexExtensions:
		return strings.Join(settings.Index.Extensions, ","), nil
	case keyIndexHidden:
		return strconv.FormatBool(settings.Index.IncludeHidden), nil
	case keyIndexMaxBytes:
		return strconv.FormatInt(settings.Index.MaxFileBytes, 10), nil
	case keyIndexPrune:
		return strconv.FormatBool(settings.Index.Prune), nil
	case keySearchLimit:
		return strconv.Itoa(settings.Search.Limit), nil
	case keySearchRanking:
		return settings.Search.Ranking.String(), nil
	case keyHighlightOpen:
		return settings.Search.HighlightOpen, nil
	case keyHighlightClose:
		return settings.Search.HighlightClose, nil
	case keyHighlightEllipsis:
		return settings.Search.HighlightEllipsis, nil
	case keySnippetTokens:
		return strconv.Itoa(settings.Search.SnippetTokens), nil
	case keyTitleWeight:
		return strconv.FormatFloat(settings.Search.TitleWeight, 'g', -1, 64), nil
	case keyWatchDebounce:
		return strconv.FormatInt(settings.Watch.Debounce.Milliseconds(), 10), nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Unset removes a stored value so that key reverts to its default.
func (s *SettingsService) Unset(key string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// ConfigPath returns the location of the backing config file.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Keys returns every known settings key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsKeys))
	for i, k := range settingsKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func isKnownKey(key string) bool {
	for _, k := range settingsKeys {
		if k.key == key {
			return true
		}
	}
	return false
}

func parseValue(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindList:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case kindRanking:
		strategy := domain.RankingStrategy(raw)
		if !strategy.IsValid() {
			return nil, fmt.Errorf("expected %q or %q", domain.RankingPureRelevance, domain.RankingRelevancePlusUsage)
		}
		return strategy.String(), nil
	default:
		return raw, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getRanking(defaultVal domain.RankingStrategy) domain.RankingStrategy {
	val := domain.RankingStrategy(s.configStore.GetString(keySearchRanking))
	if !val.IsValid() {
		return defaultVal
	}
	return val
}
