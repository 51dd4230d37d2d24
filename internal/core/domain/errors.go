package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// AI segmentation and AI ranking are disabled; the deterministic
	// strategies carry the pipeline.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrOCRUnavailable indicates the OCR service is not configured.
	// Image processing is disabled; text-level processing still works.
	ErrOCRUnavailable = errors.New("OCR service unavailable")

	// ErrRepositoryUnavailable indicates the problem repository is not
	// configured. Candidate retrieval has no defined fallback, so this is
	// the one collaborator failure the pipeline does not paper over.
	ErrRepositoryUnavailable = errors.New("problem repository unavailable")

	// ErrMalformedResponse indicates an AI response failed JSON or schema
	// validation. The whole response is rejected, never partially salvaged.
	ErrMalformedResponse = errors.New("malformed model response")
)
