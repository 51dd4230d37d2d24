package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

// stripCodeFences removes a surrounding Markdown code fence from a model
// response. Models sometimes wrap JSON in ```json ... ``` despite the
// contract forbidding it; the fence is presentation noise, not schema
// violation.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "[{") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeJSONArray parses a model response that must be a JSON array of v's
// element type. Any parse failure, or a response that is not an array,
// invalidates the entire response - partial salvage is never attempted.
func decodeJSONArray(response string, v any) error {
	cleaned := stripCodeFences(response)
	if !strings.HasPrefix(cleaned, "[") {
		return fmt.Errorf("%w: expected a JSON array", domain.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// clampUnit clamps a score into [0, 1].
func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
