// Package driving defines the interfaces through which the outside world
// drives the core (primary ports in hexagonal architecture). The CLI and
// the platform's API layer depend on these, never on concrete services.
package driving

import (
	"context"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

// ScanService runs the worksheet pipeline end to end: OCR, segmentation,
// per-segment match lookup and metadata suggestion.
//
// Both operations always return a well-formed result for inputs the OCR
// step could read - possibly with empty match lists and an empty
// suggestion - rather than an error.
type ScanService interface {
	// ProcessImage recognises the image and runs the full pipeline.
	ProcessImage(ctx context.Context, image []byte, mime string, scope domain.TenantScope) (*domain.ScanResult, error)

	// ProcessText runs the pipeline on already-recognized text.
	ProcessText(ctx context.Context, text string, scope domain.TenantScope) (*domain.ScanResult, error)
}

// MatchService ranks stored problems against a single problem text.
type MatchService interface {
	// FindMatches returns scored matches ordered descending by similarity.
	FindMatches(ctx context.Context, text string, scope domain.TenantScope) ([]domain.ProblemMatch, error)
}

// SuggestionService guesses exam metadata from raw text.
type SuggestionService interface {
	// Suggest is pure and deterministic; unmatched fields stay empty.
	Suggest(text string) domain.MetadataSuggestion
}
