package services

import (
	"fmt"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOCRBaseURL     = "ocr.base_url"
	keyOCRTimeout     = "ocr.timeout_seconds"
	keyOCRRateLimit   = "ocr.requests_per_second"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTimeout     = "llm.timeout_seconds"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTemperature = "llm.temperature"
	keyMatchLimit     = "matcher.candidate_limit"
	keyMatchMinSim    = "matcher.min_similarity"
	keyMatchSimilar   = "matcher.similar_threshold"
	keyMatchExact     = "matcher.exact_threshold"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		OCR: domain.OCRSettings{
			BaseURL:           s.configStore.GetString(keyOCRBaseURL), // No default - empty disables OCR
			TimeoutSeconds:    s.getInt(keyOCRTimeout, defaults.OCR.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(keyOCRRateLimit, defaults.OCR.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider:       s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:          s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:        s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:         s.configStore.GetString(keyLLMAPIKey),
			TimeoutSeconds: s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
			MaxTokens:      s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature:    s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Matcher: domain.MatcherSettings{
			CandidateLimit:   s.getInt(keyMatchLimit, defaults.Matcher.CandidateLimit),
			MinSimilarity:    s.getFloat(keyMatchMinSim, defaults.Matcher.MinSimilarity),
			SimilarThreshold: s.getFloat(keyMatchSimilar, defaults.Matcher.SimilarThreshold),
			ExactThreshold:   s.getFloat(keyMatchExact, defaults.Matcher.ExactThreshold),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save OCR settings
	if err := s.configStore.Set(keyOCRBaseURL, settings.OCR.BaseURL); err != nil {
		return fmt.Errorf("save ocr base_url: %w", err)
	}
	if err := s.configStore.Set(keyOCRTimeout, settings.OCR.TimeoutSeconds); err != nil {
		return fmt.Errorf("save ocr timeout: %w", err)
	}
	if err := s.configStore.Set(keyOCRRateLimit, settings.OCR.RequestsPerSecond); err != nil {
		return fmt.Errorf("save ocr rate limit: %w", err)
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMTimeout, settings.LLM.TimeoutSeconds); err != nil {
		return fmt.Errorf("save llm timeout: %w", err)
	}
	if err := s.configStore.Set(keyLLMMaxTokens, settings.LLM.MaxTokens); err != nil {
		return fmt.Errorf("save llm max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyLLMTemperature, settings.LLM.Temperature); err != nil {
		return fmt.Errorf("save llm temperature: %w", err)
	}

	// Save matcher settings
	matcher := settings.Matcher.Normalised()
	if err := s.configStore.Set(keyMatchLimit, matcher.CandidateLimit); err != nil {
		return fmt.Errorf("save matcher candidate_limit: %w", err)
	}
	if err := s.configStore.Set(keyMatchMinSim, matcher.MinSimilarity); err != nil {
		return fmt.Errorf("save matcher min_similarity: %w", err)
	}
	if err := s.configStore.Set(keyMatchSimilar, matcher.SimilarThreshold); err != nil {
		return fmt.Errorf("save matcher similar_threshold: %w", err)
	}
	if err := s.configStore.Set(keyMatchExact, matcher.ExactThreshold); err != nil {
		return fmt.Errorf("save matcher exact_threshold: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() *domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
