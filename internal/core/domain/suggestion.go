package domain

// MetadataSuggestion is a best-effort classification of scanned text, used
// to pre-fill manual-entry forms. Unrecognised fields stay empty.
type MetadataSuggestion struct {
	// ExamType is the detected exam family (e.g. "SAT", "Midterm").
	ExamType string

	// Subject is the detected academic subject.
	Subject string

	// Category is the detected topic. Only populated when the subject is
	// mathematics or unknown.
	Category string
}

// IsEmpty returns true if nothing was recognised.
func (s MetadataSuggestion) IsEmpty() bool {
	return s == MetadataSuggestion{}
}
