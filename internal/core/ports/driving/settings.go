package driving

import "github.com/custodia-labs/comply/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment fallbacks applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single dotted configuration key (e.g. "scoring.max_words").
	// Returns domain.ErrInvalidInput for unknown keys or malformed values.
	Set(key, value string) error

	// Keys returns the configuration keys accepted by Set, sorted.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
