package domain

// Problem is a stored problem from the platform's bank.
type Problem struct {
	// ID uniquely identifies the problem.
	ID string

	// TenantID scopes the problem to one tenant's bank.
	TenantID string

	// Title is a short human-readable name.
	Title string

	// Content is the full problem statement.
	Content string

	// Subject is the academic subject (e.g. "Mathematics").
	Subject string

	// Category is the topic within the subject (e.g. "Algebra").
	Category string
}

// MatchType classifies how closely a candidate matches a segment.
type MatchType string

// Match classifications, from strongest to weakest.
const (
	MatchExact   MatchType = "exact"
	MatchSimilar MatchType = "similar"
	MatchPartial MatchType = "partial"
)

// IsValid returns true if the match type is recognised.
func (t MatchType) IsValid() bool {
	switch t {
	case MatchExact, MatchSimilar, MatchPartial:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t MatchType) String() string {
	return string(t)
}

// ProblemMatch is one scored candidate for a segment.
type ProblemMatch struct {
	// ProblemID identifies the matched problem.
	ProblemID string

	// SimilarityScore is the match strength in [0, 1].
	SimilarityScore float64

	// MatchType is the categorical judgment derived from the score or
	// supplied by the AI scorer.
	MatchType MatchType

	// Problem is the full matched problem, attached from the candidate set.
	Problem Problem

	// Reasoning is the AI scorer's explanation. Empty for the token-set
	// scorer.
	Reasoning string
}
