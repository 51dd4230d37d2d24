package domain

// BoundingBox is a region of the source image in pixel coordinates.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsZero returns true if the box carries no position information.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// OCRReading is the outcome of one text-recognition call. A reading with
// Success false is a valid value, not an error: the OCR service was asked
// and could not produce text, and the pipeline degrades to an empty result
// rather than failing the request.
type OCRReading struct {
	// Success reports whether recognition produced usable text.
	Success bool

	// Text is the recognised text, empty when Success is false.
	Text string

	// Confidence is the service's overall confidence in [0, 1].
	Confidence float64

	// BBoxes are the detected text regions in reading order. May be empty
	// even on success; positional pairing with segments is best-effort.
	BBoxes []BoundingBox
}
