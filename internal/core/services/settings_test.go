package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

// mockConfigStore implements driven.ConfigStore over a plain map.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: map[string]any{}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return "/tmp/scanprep-test.toml" }

func TestSettingsService_Get_Defaults(t *testing.T) {
	service := NewSettingsService(newMockConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Empty(t, settings.OCR.BaseURL)
	assert.False(t, settings.LLM.IsConfigured())
	assert.Equal(t, domain.DefaultCandidateLimit, settings.Matcher.CandidateLimit)
	assert.InDelta(t, domain.DefaultMinSimilarity, settings.Matcher.MinSimilarity, 1e-9)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	store := newMockConfigStore()
	store.values["ocr.base_url"] = "http://ocr.internal:8080"
	store.values["llm.provider"] = "ollama"
	store.values["llm.model"] = "llama3.2"
	store.values["matcher.candidate_limit"] = 25
	store.values["matcher.min_similarity"] = 0.5

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "http://ocr.internal:8080", settings.OCR.BaseURL)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, 25, settings.Matcher.CandidateLimit)
	assert.InDelta(t, 0.5, settings.Matcher.MinSimilarity, 1e-9)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := newMockConfigStore()
	store.values["llm.provider"] = "skynet"

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings().LLM.Provider, settings.LLM.Provider)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := newMockConfigStore()
	service := NewSettingsService(store)

	in := domain.DefaultAppSettings()
	in.OCR.BaseURL = "http://ocr.internal:8080"
	in.LLM.Provider = domain.AIProviderOpenAI
	in.LLM.Model = "gpt-4o-mini"
	in.LLM.APIKey = "sk-test"
	in.Matcher.CandidateLimit = 15

	require.NoError(t, service.Save(in))

	out, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, in.OCR.BaseURL, out.OCR.BaseURL)
	assert.Equal(t, in.LLM.Provider, out.LLM.Provider)
	assert.Equal(t, in.LLM.APIKey, out.LLM.APIKey)
	assert.Equal(t, 15, out.Matcher.CandidateLimit)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	store := newMockConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_RequiresAPIKey(t *testing.T) {
	service := NewSettingsService(newMockConfigStore())

	err := service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o-mini", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetLLMProvider_InvalidProvider(t *testing.T) {
	service := NewSettingsService(newMockConfigStore())

	err := service.SetLLMProvider(domain.AIProvider("skynet"), "", "")

	assert.Error(t, err)
}
