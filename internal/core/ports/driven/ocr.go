package driven

import (
	"context"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

// OCRService converts an image into recognized text.
// This is an optional service - when nil, only text-level processing is
// available.
//
// Failure semantics follow the pipeline's error taxonomy: an unreachable or
// timed-out OCR backend is reported as a reading with Success=false, not as
// an error. Errors are reserved for caller faults (bad input, cancelled
// context) and unrecoverable client misconfiguration.
type OCRService interface {
	// Recognize extracts text, confidence and text block locations from
	// image bytes. mime is the image content type (e.g. "image/jpeg").
	Recognize(ctx context.Context, image []byte, mime string) (domain.OCRReading, error)

	// Ping validates the service is reachable by making a lightweight test
	// request. This is used at startup to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
