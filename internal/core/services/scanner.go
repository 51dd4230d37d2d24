package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driving"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driving.ScanService = (*Scanner)(nil)

// Scanner orchestrates one worksheet scan: OCR, segmentation, concurrent
// per-segment match lookup, and metadata suggestion. Every invocation is an
// independent, stateless pipeline run; the scanner holds no mutable state
// beyond its collaborators.
type Scanner struct {
	ocr       driven.OCRService // optional; nil disables ProcessImage
	segmenter *AISegmenter
	matcher   *Matcher
	suggester *Suggester
}

// NewScanner creates a scan pipeline from its stages.
// ocr may be nil, in which case only ProcessText is available.
func NewScanner(ocr driven.OCRService, segmenter *AISegmenter, matcher *Matcher, suggester *Suggester) *Scanner {
	return &Scanner{
		ocr:       ocr,
		segmenter: segmenter,
		matcher:   matcher,
		suggester: suggester,
	}
}

// ProcessImage recognises the image and runs the full pipeline. For any
// image the OCR call itself could handle, the result is well-formed -
// possibly with empty segments and matches - rather than an error.
func (s *Scanner) ProcessImage(ctx context.Context, image []byte, mime string, scope domain.TenantScope) (*domain.ScanResult, error) {
	logger.Section("Worksheet Scan")

	if s.ocr == nil {
		return nil, domain.ErrOCRUnavailable
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	reading, err := s.ocr.Recognize(ctx, image, mime)
	if err != nil {
		return nil, fmt.Errorf("recognize image: %w", err)
	}
	logger.Debug("Scan: OCR success=%t confidence=%.2f, %d chars",
		reading.Success, reading.Confidence, len(reading.Text))

	return s.process(ctx, reading, scope)
}

// ProcessText runs the pipeline on already-recognized text, for callers
// that hold OCR output from elsewhere.
func (s *Scanner) ProcessText(ctx context.Context, text string, scope domain.TenantScope) (*domain.ScanResult, error) {
	logger.Section("Text Scan")

	reading := domain.OCRReading{
		Success:    true,
		Text:       text,
		Confidence: 1,
	}
	return s.process(ctx, reading, scope)
}

func (s *Scanner) process(ctx context.Context, reading domain.OCRReading, scope domain.TenantScope) (*domain.ScanResult, error) {
	result := &domain.ScanResult{
		ID:       uuid.NewString(),
		Reading:  reading,
		Segments: []domain.SegmentMatches{},
	}

	if !reading.Success || strings.TrimSpace(reading.Text) == "" {
		logger.Warn("Scan %s: no usable text (success=%t)", result.ID, reading.Success)
		return result, nil
	}

	segments := s.segmenter.DetectProblems(ctx, reading.Text, reading.BBoxes)
	logger.Info("Scan %s: %d segments detected", result.ID, len(segments))

	// Match lookups are independent network round trips, so they fan out
	// concurrently and join on all results. A failed lookup degrades that
	// segment to an empty match list; it never cancels the others.
	result.Segments = make([]domain.SegmentMatches, len(segments))
	var wg sync.WaitGroup
	for i, segment := range segments {
		result.Segments[i].Segment = segment

		wg.Add(1)
		go func(i int, segment domain.ProblemSegment) {
			defer wg.Done()

			matches, err := s.matcher.FindMatches(ctx, segment.Text, scope)
			if err != nil {
				logger.Warn("Scan %s: match lookup failed for segment %d: %v", result.ID, i+1, err)
				matches = []domain.ProblemMatch{}
			}
			result.Segments[i].Matches = matches
		}(i, segment)
	}
	wg.Wait()

	// The suggestion runs over the raw text, independent of segmentation.
	result.Suggestion = s.suggester.Suggest(reading.Text)

	return result, nil
}
