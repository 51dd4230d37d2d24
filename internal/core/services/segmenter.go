package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// Segmentation thresholds and heuristic confidences.
const (
	// minSegmentLength is the minimum trimmed length of a pattern-based
	// segment. Shorter candidates are discarded during extraction, never
	// kept as empty placeholders.
	minSegmentLength = 10

	// minParagraphLength is the minimum trimmed length of a paragraph kept
	// by the structural fallback.
	minParagraphLength = 20

	numberedConfidence  = 0.85
	paragraphConfidence = 0.7
	wholeTextConfidence = 0.9
)

// numberingFamily is one problem-index convention (e.g. "1. ", "(1)").
// Families form a fixed priority table: the family with the most matches
// across the whole text wins, and only a strictly greater count displaces
// the current winner, so exact ties resolve to the earlier declaration.
type numberingFamily struct {
	label   string
	pattern *regexp.Regexp
}

// numberingFamilies lists the recognised conventions in priority order.
// Each pattern captures the problem numeral as its first group. The "N. "
// and "N)" forms are anchored to a line start or preceding whitespace so
// that decimals ("3.5") and the "(N)" form don't inflate their counts.
var numberingFamilies = []numberingFamily{
	{"dot", regexp.MustCompile(`(?m)(?:^|\s)(\d{1,3})\.\s`)},
	{"problem-word", regexp.MustCompile(`(?i)\bproblem\s+(\d{1,3})\b`)},
	{"question-word", regexp.MustCompile(`(?i)\bquestion\s+(\d{1,3})\b`)},
	{"parens", regexp.MustCompile(`\((\d{1,3})\)`)},
	{"half-paren", regexp.MustCompile(`(?m)(?:^|\s)(\d{1,3})\)`)},
	{"brackets", regexp.MustCompile(`\[(\d{1,3})\]`)},
	{"hash", regexp.MustCompile(`#(\d{1,3})\b`)},
}

// paragraphBreak matches blank-line boundaries (two or more consecutive
// newlines, possibly separated by other whitespace).
var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n+`)

// segmentStrategy is one step in the segmentation fallback chain. A
// strategy declines by returning an empty slice, handing over to the next.
type segmentStrategy struct {
	name  string
	apply func(text string, boxes []domain.BoundingBox) []domain.ProblemSegment
}

// Segmenter splits raw OCR text into problem segments using an ordered
// chain of heuristics: numbered-pattern matching, structural paragraph
// splitting, then a single-block fallback. Numbering is strictly preferred
// over structural splitting because a printed index is unambiguous evidence
// of intentional per-problem boundaries.
//
// The segmenter holds no mutable state and is safe for concurrent use.
type Segmenter struct {
	strategies []segmentStrategy
}

// NewSegmenter creates a new heuristic segmenter.
func NewSegmenter() *Segmenter {
	s := &Segmenter{}
	s.strategies = []segmentStrategy{
		{"numbered", s.numberedSegments},
		{"paragraph", s.paragraphSegments},
		{"whole-text", s.wholeTextSegment},
	}
	return s
}

// Segment splits text into problem segments. It never fails: non-empty text
// yields at least one segment, empty or whitespace-only text yields an
// empty slice.
func (s *Segmenter) Segment(text string, boxes []domain.BoundingBox) []domain.ProblemSegment {
	if strings.TrimSpace(text) == "" {
		logger.Debug("Segmenter: empty input, no segments")
		return []domain.ProblemSegment{}
	}

	for _, strategy := range s.strategies {
		if segments := strategy.apply(text, boxes); len(segments) > 0 {
			logger.Debug("Segmenter: strategy %q produced %d segments", strategy.name, len(segments))
			return segments
		}
		logger.Debug("Segmenter: strategy %q declined", strategy.name)
	}

	return []domain.ProblemSegment{}
}

// winningFamily returns the numbering family with the most matches in text,
// along with its match count. Ties keep the earlier family.
func winningFamily(text string) (numberingFamily, int) {
	best := numberingFamilies[0]
	bestCount := 0
	for _, family := range numberingFamilies {
		count := len(family.pattern.FindAllStringIndex(text, -1))
		if count > bestCount {
			best = family
			bestCount = count
		}
	}
	return best, bestCount
}

// numberedSegments implements the numbered-pattern strategy: pick the
// winning family, split the text at its matches, and pair each captured
// numeral with the text that follows it.
func (s *Segmenter) numberedSegments(text string, boxes []domain.BoundingBox) []domain.ProblemSegment {
	family, count := winningFamily(text)
	if count == 0 {
		return nil
	}
	logger.Debug("Segmenter: numbering family %q won with %d matches", family.label, count)

	matches := family.pattern.FindAllStringSubmatchIndex(text, -1)
	segments := make([]domain.ProblemSegment, 0, len(matches))

	for i, match := range matches {
		// The segment body runs from the end of this marker to the start
		// of the next one (or the end of the text).
		start := match[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		body := strings.TrimSpace(text[start:end])
		if utf8.RuneCountInString(body) <= minSegmentLength {
			continue
		}

		number, err := strconv.Atoi(text[match[2]:match[3]])
		if err != nil {
			continue
		}

		segment := domain.ProblemSegment{
			Text:          body,
			Confidence:    numberedConfidence,
			ProblemNumber: number,
		}
		if i < len(boxes) {
			segment.BoundingBox = boxes[i]
		}
		segments = append(segments, segment)
	}

	return segments
}

// paragraphSegments implements the structural fallback: split on blank-line
// boundaries and keep substantial paragraphs, numbering them sequentially.
func (s *Segmenter) paragraphSegments(text string, _ []domain.BoundingBox) []domain.ProblemSegment {
	var segments []domain.ProblemSegment

	for _, paragraph := range paragraphBreak.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if utf8.RuneCountInString(paragraph) <= minParagraphLength {
			continue
		}
		segments = append(segments, domain.ProblemSegment{
			Text:          paragraph,
			Confidence:    paragraphConfidence,
			ProblemNumber: len(segments) + 1,
		})
	}

	return segments
}

// wholeTextSegment is the last resort: the whole trimmed text as a single
// segment.
func (s *Segmenter) wholeTextSegment(text string, _ []domain.BoundingBox) []domain.ProblemSegment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return []domain.ProblemSegment{{
		Text:          trimmed,
		Confidence:    wholeTextConfidence,
		ProblemNumber: 1,
	}}
}
