package driving

import "github.com/custodia-labs/aska-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// GetValue reads one configuration value by its dotted key
	// (e.g. "chunking.window_size"), falling back to the default for
	// anything not stored. Returns ErrNotFound for unrecognised keys.
	GetValue(key string) (any, error)

	// SetValue writes one configuration value by its dotted key and
	// persists immediately. The resulting settings must still
	// validate; violations are ErrConfig and nothing is written.
	SetValue(key string, value string) error

	// Keys lists every recognised configuration key.
	Keys() []string

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the embedding configuration
	// by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the answer generator configuration
	// by pinging the provider.
	ValidateLLMConfig() error
}
