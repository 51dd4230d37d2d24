package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	generateResult string
	generateErr    error
	generateCalls  int
	lastPrompt     string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.generateResult, nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	prompt, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return prompt, nil
}

func (m *mockPromptStore) Reload() {}

// --- Tests ---

const sampleWorksheet = "1. What is 2+2? Show your work.\n2. What is 3+3? Explain your reasoning."

func TestAISegmenter_NilLLM_UsesHeuristics(t *testing.T) {
	segmenter := NewAISegmenter(nil, NewSegmenter(), domain.LLMSettings{})
	ctx := context.Background()

	segments := segmenter.DetectProblems(ctx, sampleWorksheet, nil)

	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].ProblemNumber)
	assert.InDelta(t, numberedConfidence, segments[0].Confidence, 1e-9)
}

func TestAISegmenter_ValidResponse(t *testing.T) {
	llm := &mockLLMService{
		generateResult: `[
			{"problem_number": 1, "text": "What is 2+2? Show your work.", "confidence": 0.92},
			{"problem_number": 2, "text": "What is 3+3? Explain your reasoning.", "confidence": 0.88}
		]`,
	}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})
	ctx := context.Background()

	segments := segmenter.DetectProblems(ctx, sampleWorksheet, nil)

	require.Len(t, segments, 2)
	assert.Equal(t, 1, llm.generateCalls)
	assert.Equal(t, "What is 2+2? Show your work.", segments[0].Text)
	assert.Equal(t, 1, segments[0].ProblemNumber)
	assert.InDelta(t, 0.92, segments[0].Confidence, 1e-9)
	assert.Equal(t, 2, segments[1].ProblemNumber)
}

func TestAISegmenter_CodeFencedResponse(t *testing.T) {
	llm := &mockLLMService{
		generateResult: "```json\n[{\"problem_number\": 1, \"text\": \"What is 2+2? Show your work.\", \"confidence\": 0.9}]\n```",
	}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})

	segments := segmenter.SegmentWithAI(context.Background(), sampleWorksheet)

	require.Len(t, segments, 1)
	assert.Equal(t, "What is 2+2? Show your work.", segments[0].Text)
}

func TestAISegmenter_ConfidenceClamped(t *testing.T) {
	llm := &mockLLMService{
		generateResult: `[{"problem_number": 1, "text": "What is 2+2? Show your work.", "confidence": 3.7}]`,
	}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})

	segments := segmenter.SegmentWithAI(context.Background(), sampleWorksheet)

	require.Len(t, segments, 1)
	assert.InDelta(t, 1.0, segments[0].Confidence, 1e-9)
}

func TestAISegmenter_ShortTextDropped(t *testing.T) {
	llm := &mockLLMService{
		generateResult: `[
			{"problem_number": 1, "text": "2+2?", "confidence": 0.9},
			{"problem_number": 2, "text": "What is 3+3? Explain your reasoning.", "confidence": 0.9}
		]`,
	}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})

	segments := segmenter.SegmentWithAI(context.Background(), sampleWorksheet)

	require.Len(t, segments, 1)
	assert.Equal(t, 2, segments[0].ProblemNumber)
}

func TestAISegmenter_MalformedResponse_FallsBackToHeuristics(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "the problems are: 2+2 and 3+3"},
		{"object instead of array", `{"problems": []}`},
		{"truncated array", `[{"problem_number": 1, "text": "What is`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &mockLLMService{generateResult: tc.response}
			segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})

			assert.Empty(t, segmenter.SegmentWithAI(context.Background(), sampleWorksheet))

			// The combined entry point degrades to the heuristic chain.
			segments := segmenter.DetectProblems(context.Background(), sampleWorksheet, nil)
			require.Len(t, segments, 2)
			assert.InDelta(t, numberedConfidence, segments[0].Confidence, 1e-9)
		})
	}
}

func TestAISegmenter_GenerateError_FallsBackToHeuristics(t *testing.T) {
	llm := &mockLLMService{generateErr: errors.New("connection refused")}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})

	segments := segmenter.DetectProblems(context.Background(), sampleWorksheet, nil)

	require.Len(t, segments, 2)
	assert.InDelta(t, numberedConfidence, segments[0].Confidence, 1e-9)
}

func TestAISegmenter_EmptyText(t *testing.T) {
	llm := &mockLLMService{generateResult: "[]"}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})

	assert.Empty(t, segmenter.SegmentWithAI(context.Background(), "   "))
	assert.Zero(t, llm.generateCalls)
}

func TestAISegmenter_PromptStoreOverridesDefault(t *testing.T) {
	llm := &mockLLMService{generateResult: "[]"}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})
	segmenter.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptSegmentation: "custom segmentation prompt: %s",
	}})

	segmenter.SegmentWithAI(context.Background(), sampleWorksheet)

	assert.Contains(t, llm.lastPrompt, "custom segmentation prompt")
}

func TestAISegmenter_PromptStoreFailure_UsesDefault(t *testing.T) {
	llm := &mockLLMService{generateResult: "[]"}
	segmenter := NewAISegmenter(llm, NewSegmenter(), domain.LLMSettings{})
	segmenter.SetPromptStore(&mockPromptStore{loadErr: errors.New("missing prompts dir")})

	segmenter.SegmentWithAI(context.Background(), sampleWorksheet)

	assert.Contains(t, llm.lastPrompt, "JSON array")
}
