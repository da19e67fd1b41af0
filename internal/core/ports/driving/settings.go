package driving

import "github.com/custodia-labs/pigpen/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, filling unset keys with defaults.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetRanking updates the default ranking strategy.
	SetRanking(strategy domain.RankingStrategy) error

	// SetVaultPath updates the default vault root.
	SetVaultPath(path string) error

	// SetValue parses raw for the known key and persists it.
	// Unknown keys and unparsable values return domain.ErrInvalidInput.
	SetValue(key, raw string) error

	// Value returns the effective value of key, formatted for display.
	Value(key string) (string, error)

	// Unset removes a stored value so the key reverts to its default.
	Unset(key string) error

	// ConfigPath returns the location of the backing config file.
	ConfigPath() string

	// Keys returns every known settings key in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
