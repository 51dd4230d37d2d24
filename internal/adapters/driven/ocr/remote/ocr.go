// Package remote provides an OCR service adapter over the platform's
// HTTP recognition API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// Ensure OCRService implements the interface.
var _ driven.OCRService = (*OCRService)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond throttles recognition calls. OCR backends
	// are GPU-bound and queue badly under burst load.
	DefaultRequestsPerSecond = 2.0
)

// Config holds configuration for the remote OCR service.
type Config struct {
	// BaseURL is the OCR API base URL (required).
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles calls (default: 2).
	RequestsPerSecond float64
}

// OCRService recognises text in images via the remote recognition API.
//
// Backend failures (unreachable host, timeout, non-2xx status, undecodable
// body) surface as a reading with Success=false and a nil error, so one
// flaky OCR call degrades a scan instead of failing it. Context
// cancellation is the caller's signal and is returned as an error.
type OCRService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// recognizeResponse is the recognition API response format. BBoxes arrive
// as [x, y, width, height] quadruples in pixel coordinates.
type recognizeResponse struct {
	Success    bool         `json:"success"`
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	BBoxes     [][4]float64 `json:"bboxes"`
}

// NewOCRService creates a new remote OCR service.
func NewOCRService(cfg Config) (*OCRService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ocr: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &OCRService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Recognize sends the image to the recognition endpoint as a multipart
// upload and maps the response to a domain reading.
func (s *OCRService) Recognize(ctx context.Context, image []byte, mime string) (domain.OCRReading, error) {
	if len(image) == 0 {
		return domain.OCRReading{}, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return domain.OCRReading{}, fmt.Errorf("rate limit wait: %w", err)
	}

	body, contentType, err := buildMultipart(image, mime)
	if err != nil {
		return domain.OCRReading{}, fmt.Errorf("build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/ocr", body)
	if err != nil {
		return domain.OCRReading{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		// Cancellation belongs to the caller; everything else is a failed
		// reading.
		if ctx.Err() != nil {
			return domain.OCRReading{}, ctx.Err()
		}
		logger.Warn("OCR: request failed: %v", err)
		return failedReading(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("OCR: API returned status %d", resp.StatusCode)
		return failedReading(), nil
	}

	var ocrResp recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
		logger.Warn("OCR: undecodable response: %v", err)
		return failedReading(), nil
	}

	reading := domain.OCRReading{
		Success:    ocrResp.Success,
		Text:       ocrResp.Text,
		Confidence: ocrResp.Confidence,
	}
	if len(ocrResp.BBoxes) > 0 {
		reading.BBoxes = make([]domain.BoundingBox, len(ocrResp.BBoxes))
		for i, b := range ocrResp.BBoxes {
			reading.BBoxes[i] = domain.BoundingBox{X: b[0], Y: b[1], Width: b[2], Height: b[3]}
		}
	}
	return reading, nil
}

// buildMultipart assembles the multipart upload: one "image" file part.
func buildMultipart(image []byte, mime string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename(mime))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

// filename picks a part filename matching the content type. Some OCR
// backends sniff the extension rather than the multipart headers.
func filename(mime string) string {
	switch mime {
	case "image/png":
		return "scan.png"
	case "image/webp":
		return "scan.webp"
	default:
		return "scan.jpg"
	}
}

// failedReading is the degraded result for an unusable OCR response.
func failedReading() domain.OCRReading {
	return domain.OCRReading{Success: false}
}

// Ping validates the service is reachable by checking the health endpoint.
func (s *OCRService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("ocr: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ocr: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ocr: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ocr: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *OCRService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
