package driving

import "github.com/scanprep-labs/scanprep/internal/core/domain"

// SettingsService manages the persisted pipeline configuration.
type SettingsService interface {
	// Get retrieves current settings, with defaults applied for unset keys.
	Get() (*domain.AppSettings, error)

	// Save persists the given settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider, validating the provider
	// and its API key requirement. An empty model selects the provider
	// default.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
}
