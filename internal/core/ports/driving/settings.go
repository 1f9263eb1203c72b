package driving

import "github.com/custodia-labs/weldsafe/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Set stores a single dot-notation key, validating the result.
	Set(key, value string) error

	// Keys lists the recognised configuration keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// DataDir returns the directory that holds config, index and database.
	DataDir() string
}
