package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// AI segmentation call parameters. Temperature stays near zero so repeated
// scans of the same worksheet segment identically.
const (
	defaultSegmentationMaxTokens = 2000
	defaultAITemperature         = 0.1
)

// defaultSegmentationPrompt is the fallback prompt when no PromptStore is
// configured. The response contract is load-bearing: parsing rejects
// anything that is not a bare JSON array of these objects.
const defaultSegmentationPrompt = `You are given raw OCR text from a photographed worksheet that may contain several problems. Split it into the individual problems.

Respond with a JSON array and nothing else. Each element must be an object with exactly these fields:
  "problem_number": the printed problem number, or the 1-based position if none is printed,
  "text": the complete problem statement,
  "confidence": a number between 0 and 1.

Do not merge separate problems and do not invent text that is not present in the input.

OCR text:
%s`

// aiSegment is the segmentation response element schema.
type aiSegment struct {
	ProblemNumber int     `json:"problem_number"`
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
}

// AISegmenter is the AI-assisted segmentation path. It delegates to a
// text-completion service under a strict response contract and falls back
// to the heuristic chain whenever the service is absent, fails, or returns
// anything it shouldn't. Failures never propagate past this type.
type AISegmenter struct {
	llm         driven.LLMService // optional; nil disables the AI path
	promptStore driven.PromptStore
	heuristics  *Segmenter
	maxTokens   int
	temperature float64
}

// NewAISegmenter creates an AI segmenter over the given heuristic chain.
// llm may be nil, in which case DetectProblems always uses the heuristics.
func NewAISegmenter(llm driven.LLMService, heuristics *Segmenter, cfg domain.LLMSettings) *AISegmenter {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultSegmentationMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultAITemperature
	}
	return &AISegmenter{
		llm:         llm,
		heuristics:  heuristics,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the segmenter uses the hardcoded default prompt.
func (s *AISegmenter) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// DetectProblems is the combined entry point: AI segmentation is attempted
// first when a model is configured, and the heuristic chain runs as the
// guaranteed-available baseline when the AI path declines. The AI path is
// preferred because it handles non-numbered, oddly formatted and
// multi-column problem sets the regex chain cannot.
func (s *AISegmenter) DetectProblems(ctx context.Context, text string, boxes []domain.BoundingBox) []domain.ProblemSegment {
	if s.llm != nil {
		if segments := s.SegmentWithAI(ctx, text); len(segments) > 0 {
			return segments
		}
		logger.Debug("AISegmenter: AI path declined, using heuristic chain")
	}
	return s.heuristics.Segment(text, boxes)
}

// SegmentWithAI asks the language model to split the text. On any failure
// (no model, network, timeout, malformed response) it returns an empty
// slice; it never returns an error to the caller.
func (s *AISegmenter) SegmentWithAI(ctx context.Context, text string) []domain.ProblemSegment {
	if s.llm == nil {
		return []domain.ProblemSegment{}
	}
	if strings.TrimSpace(text) == "" {
		return []domain.ProblemSegment{}
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptSegmentation, defaultSegmentationPrompt), text)

	response, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("AISegmenter: completion failed: %v", err)
		return []domain.ProblemSegment{}
	}

	var raw []aiSegment
	if err := decodeJSONArray(response, &raw); err != nil {
		logger.Warn("AISegmenter: %v", err)
		return []domain.ProblemSegment{}
	}

	segments := make([]domain.ProblemSegment, 0, len(raw))
	for _, item := range raw {
		body := strings.TrimSpace(item.Text)
		if utf8.RuneCountInString(body) <= minSegmentLength {
			continue
		}
		segments = append(segments, domain.ProblemSegment{
			Text:          body,
			Confidence:    clampUnit(item.Confidence),
			ProblemNumber: item.ProblemNumber,
			// The AI path has no access to OCR layout; the box stays zero.
		})
	}

	logger.Debug("AISegmenter: model %s produced %d segments", s.llm.ModelName(), len(segments))
	return segments
}

// loadPrompt loads a prompt from the store, falling back to the default if
// unavailable.
func (s *AISegmenter) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}
