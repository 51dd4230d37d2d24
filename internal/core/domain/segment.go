package domain

// ProblemSegment is one problem extracted from recognised worksheet text.
type ProblemSegment struct {
	// Text is the trimmed problem statement.
	Text string

	// BoundingBox locates the segment in the source image. Zero when no
	// layout information was available.
	BoundingBox BoundingBox

	// Confidence is the segmentation strategy's confidence in [0, 1].
	Confidence float64

	// ProblemNumber is the printed problem index, or the 1-based position
	// when the strategy assigned one. Zero means no number was derived.
	ProblemNumber int
}
