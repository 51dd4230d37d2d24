package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driving"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// Ensure Matcher implements the interface.
var _ driving.MatchService = (*Matcher)(nil)

// candidateExcerptLen bounds the candidate content included in the ranking
// prompt.
const candidateExcerptLen = 200

// minTokenLength: tokens this short or shorter carry no signal and are
// dropped before computing set similarity.
const minTokenLength = 2

// defaultRankingPrompt is the fallback prompt when no PromptStore is
// configured. Like segmentation, the contract is strict: a bare JSON array
// or nothing.
const defaultRankingPrompt = `Rate how well each stored problem matches the input problem.

Respond with a JSON array and nothing else. Each element must be an object with exactly these fields:
  "problem_id": the candidate id exactly as listed,
  "similarity_score": a number between 0 and 1,
  "match_type": one of "exact", "similar" or "partial",
  "reasoning": one short sentence.

Only include candidates that are plausibly the same or a related problem.

Input problem:
%s

Candidates:
%s`

// aiMatch is the ranking response element schema.
type aiMatch struct {
	ProblemID       string  `json:"problem_id"`
	SimilarityScore float64 `json:"similarity_score"`
	MatchType       string  `json:"match_type"`
	Reasoning       string  `json:"reasoning"`
}

// Matcher ranks stored problems against one segment's text. Candidates come
// from the problem repository's full-text search; scoring uses the AI
// reasoning scorer when a model is configured and the deterministic
// token-set scorer as the guaranteed fallback.
//
// The matcher holds only configuration; it is safe for concurrent use.
type Matcher struct {
	repo        driven.ProblemRepository
	llm         driven.LLMService // optional; nil disables AI ranking
	promptStore driven.PromptStore
	settings    domain.MatcherSettings
	maxTokens   int
	temperature float64
}

// NewMatcher creates a matcher over the given repository.
// llm may be nil, in which case only the token-set scorer runs.
func NewMatcher(repo driven.ProblemRepository, llm driven.LLMService, matcherSettings domain.MatcherSettings, llmSettings domain.LLMSettings) *Matcher {
	maxTokens := llmSettings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultSegmentationMaxTokens
	}
	temperature := llmSettings.Temperature
	if temperature <= 0 {
		temperature = defaultAITemperature
	}
	return &Matcher{
		repo:        repo,
		llm:         llm,
		settings:    matcherSettings.Normalised(),
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the matcher uses the hardcoded default prompt.
func (m *Matcher) SetPromptStore(store driven.PromptStore) {
	m.promptStore = store
}

// FindMatches returns scored matches for one segment's text, ordered
// descending by similarity. Zero candidates from retrieval mean an empty
// result with no scorer invoked. AI scorer failures fall back to the
// token-set scorer; only a retrieval failure itself propagates.
func (m *Matcher) FindMatches(ctx context.Context, text string, scope domain.TenantScope) ([]domain.ProblemMatch, error) {
	if m.repo == nil {
		return nil, domain.ErrRepositoryUnavailable
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []domain.ProblemMatch{}, nil
	}

	candidates, err := m.repo.Search(ctx, text, scope, m.settings.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("candidate retrieval: %w", err)
	}
	if len(candidates) == 0 {
		logger.Debug("Matcher: no candidates retrieved, skipping scoring")
		return []domain.ProblemMatch{}, nil
	}
	logger.Debug("Matcher: %d candidates retrieved", len(candidates))

	if m.llm != nil {
		matches, err := m.rankWithAI(ctx, text, candidates)
		if err == nil {
			logger.Debug("Matcher: AI scorer kept %d matches", len(matches))
			return matches, nil
		}
		logger.Warn("Matcher: AI ranking failed: %v (falling back to token-set scorer)", err)
	}

	matches := m.rankByTokenSet(text, candidates)
	logger.Debug("Matcher: token-set scorer kept %d matches", len(matches))
	return matches, nil
}

// rankWithAI asks the language model to rate every candidate. A malformed
// response anywhere invalidates the whole response; ids not present in the
// candidate set are discarded to protect against hallucination.
func (m *Matcher) rankWithAI(ctx context.Context, text string, candidates []domain.Problem) ([]domain.ProblemMatch, error) {
	prompt := fmt.Sprintf(m.loadPrompt(driven.PromptRanking, defaultRankingPrompt),
		text, formatCandidates(candidates))

	response, err := m.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   m.maxTokens,
		Temperature: m.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking completion: %w", err)
	}

	var rated []aiMatch
	if err := decodeJSONArray(response, &rated); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Problem, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	matches := make([]domain.ProblemMatch, 0, len(rated))
	for _, r := range rated {
		candidate, ok := byID[r.ProblemID]
		if !ok {
			logger.Warn("Matcher: discarding unknown problem id %q from model response", r.ProblemID)
			continue
		}

		score := clampUnit(r.SimilarityScore)
		if score <= m.settings.MinSimilarity {
			continue
		}

		// The model supplies its own categorical judgment; an unrecognised
		// label is normalised by re-bucketing from the score.
		matchType := domain.MatchType(r.MatchType)
		if !matchType.IsValid() {
			matchType = m.settings.Bucket(score)
		}

		matches = append(matches, domain.ProblemMatch{
			ProblemID:       candidate.ID,
			SimilarityScore: score,
			MatchType:       matchType,
			Problem:         candidate,
			Reasoning:       strings.TrimSpace(r.Reasoning),
		})
	}

	sortMatches(matches)
	return matches, nil
}

// rankByTokenSet is the deterministic fallback: Jaccard similarity over
// tokenized word sets, thresholded and bucketed.
func (m *Matcher) rankByTokenSet(text string, candidates []domain.Problem) []domain.ProblemMatch {
	queryTokens := tokenSet(text)

	matches := make([]domain.ProblemMatch, 0, len(candidates))
	for _, candidate := range candidates {
		score := jaccard(queryTokens, tokenSet(candidate.Content))
		if score <= m.settings.MinSimilarity {
			continue
		}
		matches = append(matches, domain.ProblemMatch{
			ProblemID:       candidate.ID,
			SimilarityScore: score,
			MatchType:       m.settings.Bucket(score),
			Problem:         candidate,
		})
	}

	sortMatches(matches)
	return matches
}

// loadPrompt loads a prompt from the store, falling back to the default if
// unavailable.
func (m *Matcher) loadPrompt(name, fallback string) string {
	if m.promptStore == nil {
		return fallback
	}
	prompt, err := m.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// formatCandidates renders the candidate list for the ranking prompt.
func formatCandidates(candidates []domain.Problem) string {
	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id: %s\n", c.ID)
		if c.Title != "" {
			fmt.Fprintf(&b, "  title: %s\n", c.Title)
		}
		if c.Subject != "" {
			fmt.Fprintf(&b, "  subject: %s\n", c.Subject)
		}
		if c.Category != "" {
			fmt.Fprintf(&b, "  category: %s\n", c.Category)
		}
		fmt.Fprintf(&b, "  excerpt: %s\n", excerpt(c.Content, candidateExcerptLen))
	}
	return b.String()
}

// excerpt returns the first maxRunes runes of s on a single line.
func excerpt(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// sortMatches orders matches descending by similarity score, with the
// problem id as a stable tie-break.
func sortMatches(matches []domain.ProblemMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SimilarityScore != matches[j].SimilarityScore {
			return matches[i].SimilarityScore > matches[j].SimilarityScore
		}
		return matches[i].ProblemID < matches[j].ProblemID
	})
}

// tokenSet tokenizes text into a set of normalised words: lowercased,
// stripped of non-alphanumeric runes, split on whitespace, with tokens of
// length <= minTokenLength discarded. Repeated tokens count once.
func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		token := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, field)
		if utf8.RuneCountInString(token) <= minTokenLength {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// jaccard computes |intersection| / |union| over two token sets.
// Two empty sets have similarity 0, not NaN.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
