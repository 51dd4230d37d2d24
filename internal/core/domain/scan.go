package domain

// TenantScope restricts repository access to one tenant's problem bank.
// Every retrieval carries a scope; there is no cross-tenant matching.
type TenantScope struct {
	TenantID string
}

// IsZero returns true if no tenant is set.
func (s TenantScope) IsZero() bool {
	return s.TenantID == ""
}

// SegmentMatches pairs one segment with its scored matches. An empty match
// list is a valid outcome: the segment was processed and nothing in the
// bank resembles it, or its lookup failed and was degraded.
type SegmentMatches struct {
	Segment ProblemSegment
	Matches []ProblemMatch
}

// ScanResult is the outcome of one pipeline run over a worksheet.
type ScanResult struct {
	// ID uniquely identifies this scan.
	ID string

	// Reading is the OCR outcome the run was based on.
	Reading OCRReading

	// Segments holds the detected problems in reading order, each with its
	// matches. Empty when the reading produced no usable text.
	Segments []SegmentMatches

	// Suggestion is the metadata classification of the raw text.
	Suggestion MetadataSuggestion
}
