package domain

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultLLMModels returns the default model per provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// LLMSettings configures the optional text-completion service used by AI
// segmentation and AI match ranking. When not configured, both paths fall
// back to their deterministic strategies.
type LLMSettings struct {
	// Provider selects the LLM backend.
	Provider AIProvider

	// Model is the model name (provider-specific default when empty).
	Model string

	// APIKey authenticates cloud providers.
	APIKey string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// TimeoutSeconds bounds each completion call. Zero means the adapter
	// default.
	TimeoutSeconds int

	// MaxTokens bounds the response size. Zero means the service default.
	MaxTokens int

	// Temperature controls sampling randomness. The pipeline keeps it near
	// zero for deterministic, schema-bound responses.
	Temperature float64
}

// IsConfigured returns true if the settings describe a usable provider.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings configures the external OCR service.
type OCRSettings struct {
	// BaseURL is the OCR service endpoint (required).
	BaseURL string

	// TimeoutSeconds bounds each recognition call. Zero means the adapter
	// default.
	TimeoutSeconds int

	// RequestsPerSecond throttles calls to the service. Zero means the
	// adapter default.
	RequestsPerSecond float64
}

// IsConfigured returns true if an OCR endpoint is set.
func (s *OCRSettings) IsConfigured() bool {
	return s != nil && s.BaseURL != ""
}

// Matcher threshold defaults. The 0.3/0.7/0.9 values mirror the platform's
// long-standing acceptance thresholds; they are configuration, not derived.
const (
	DefaultCandidateLimit   = 10
	DefaultMinSimilarity    = 0.3
	DefaultSimilarThreshold = 0.7
	DefaultExactThreshold   = 0.9
)

// MatcherSettings holds candidate-retrieval and scoring thresholds.
type MatcherSettings struct {
	// CandidateLimit is the maximum number of candidates fetched per segment.
	CandidateLimit int

	// MinSimilarity is the strict lower bound for keeping a match.
	// A score equal to the bound is excluded.
	MinSimilarity float64

	// SimilarThreshold is the strict lower bound for the "similar" bucket.
	SimilarThreshold float64

	// ExactThreshold is the strict lower bound for the "exact" bucket.
	ExactThreshold float64
}

// DefaultMatcherSettings returns the standard thresholds.
func DefaultMatcherSettings() MatcherSettings {
	return MatcherSettings{
		CandidateLimit:   DefaultCandidateLimit,
		MinSimilarity:    DefaultMinSimilarity,
		SimilarThreshold: DefaultSimilarThreshold,
		ExactThreshold:   DefaultExactThreshold,
	}
}

// Normalised returns a copy with zero fields replaced by defaults.
func (s MatcherSettings) Normalised() MatcherSettings {
	defaults := DefaultMatcherSettings()
	if s.CandidateLimit <= 0 {
		s.CandidateLimit = defaults.CandidateLimit
	}
	if s.MinSimilarity <= 0 {
		s.MinSimilarity = defaults.MinSimilarity
	}
	if s.SimilarThreshold <= 0 {
		s.SimilarThreshold = defaults.SimilarThreshold
	}
	if s.ExactThreshold <= 0 {
		s.ExactThreshold = defaults.ExactThreshold
	}
	return s
}

// Bucket maps a similarity score to its match type. It is a pure function
// of the score and the configured thresholds.
func (s MatcherSettings) Bucket(score float64) MatchType {
	switch {
	case score > s.ExactThreshold:
		return MatchExact
	case score > s.SimilarThreshold:
		return MatchSimilar
	default:
		return MatchPartial
	}
}

// AppSettings is the full persisted pipeline configuration.
type AppSettings struct {
	OCR     OCRSettings
	LLM     LLMSettings
	Matcher MatcherSettings
}

// DefaultAppSettings returns settings with all defaults applied.
// OCR and LLM remain unconfigured until the operator sets them.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		Matcher: DefaultMatcherSettings(),
	}
}
