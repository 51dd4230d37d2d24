package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

var (
	scanText string
	scanJSON bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Run the full scan pipeline on a worksheet",
	Long: `Runs OCR, segmentation, candidate matching and metadata suggestion
on a worksheet photo. With --text the OCR step is skipped and the pipeline
runs directly on the given text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanText, "text", "", "scan raw text instead of an image file")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanService == nil {
		return errors.New("scan service not configured")
	}

	ctx := cmd.Context()

	var (
		result *domain.ScanResult
		err    error
	)

	switch {
	case scanText != "":
		result, err = scanService.ProcessText(ctx, scanText, scope())
	case len(args) == 1:
		image, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("reading image: %w", readErr)
		}
		result, err = scanService.ProcessImage(ctx, image, mimeFromPath(args[0]), scope())
	default:
		return errors.New("provide an image file or --text")
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		return outputJSON(cmd, result)
	}
	return outputScanResult(cmd, result)
}

// mimeFromPath maps a file extension to the MIME type the OCR API expects.
func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputScanResult(cmd *cobra.Command, result *domain.ScanResult) error {
	if !result.Reading.Success {
		cmd.Println("OCR could not read the image.")
		return nil
	}

	cmd.Printf("Scan %s\n", result.ID)
	cmd.Printf("OCR confidence: %.2f\n", result.Reading.Confidence)
	cmd.Println()

	if len(result.Segments) == 0 {
		cmd.Println("No problems found.")
	}

	for i := range result.Segments {
		seg := &result.Segments[i]
		cmd.Printf("Problem %d (confidence %.2f)\n", seg.Segment.ProblemNumber, seg.Segment.Confidence)
		cmd.Printf("  %s\n", seg.Segment.Text)
		if len(seg.Matches) == 0 {
			cmd.Println("  No matches.")
		}
		for j := range seg.Matches {
			printMatch(cmd, &seg.Matches[j], "  ")
		}
		cmd.Println()
	}

	if !result.Suggestion.IsEmpty() {
		cmd.Println("Suggested metadata:")
		printSuggestion(cmd, result.Suggestion)
	}

	return nil
}

func printMatch(cmd *cobra.Command, match *domain.ProblemMatch, indent string) {
	title := match.Problem.Title
	if title == "" {
		title = match.ProblemID
	}
	cmd.Printf("%s[%s] %s (%.2f)\n", indent, match.MatchType, title, match.SimilarityScore)
	if match.Reasoning != "" {
		cmd.Printf("%s    %s\n", indent, match.Reasoning)
	}
}

func printSuggestion(cmd *cobra.Command, s domain.MetadataSuggestion) {
	if s.ExamType != "" {
		cmd.Printf("  Exam type: %s\n", s.ExamType)
	}
	if s.Subject != "" {
		cmd.Printf("  Subject: %s\n", s.Subject)
	}
	if s.Category != "" {
		cmd.Printf("  Category: %s\n", s.Category)
	}
}
