package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage pipeline settings",
	Long: `View and configure the OCR endpoint, LLM provider and matcher
thresholds. Settings persist in ~/.scanprep/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long: `Configure the LLM used for AI segmentation and match ranking.
Without an LLM the pipeline falls back to the heuristic strategies.`,
	RunE: runSettingsLLM,
}

var settingsOCRCmd = &cobra.Command{
	Use:   "ocr [base-url]",
	Short: "Set the OCR service endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsOCR,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsOCRCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[OCR]")
	if settings.OCR.IsConfigured() {
		cmd.Printf("  Endpoint: %s\n", settings.OCR.BaseURL)
		cmd.Printf("  Timeout: %ds\n", settings.OCR.TimeoutSeconds)
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.OCR.RequestsPerSecond)
	} else {
		cmd.Println("  Endpoint: (not set - image scanning disabled)")
	}
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider.IsValid() {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			if settings.LLM.APIKey != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured - heuristic segmentation and ranking only"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Matcher]")
	matcher := settings.Matcher.Normalised()
	cmd.Printf("  Candidate limit: %d\n", matcher.CandidateLimit)
	cmd.Printf("  Min similarity: %.2f\n", matcher.MinSimilarity)
	cmd.Printf("  Similar threshold: %.2f\n", matcher.SimilarThreshold)
	cmd.Printf("  Exact threshold: %.2f\n", matcher.ExactThreshold)

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic}
	cmd.Println("Select LLM Provider")
	cmd.Println("-------------------")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	cmd.Printf("Model [%s]: ", defaults[provider])
	model := readLine(reader)

	apiKey := ""
	if provider.RequiresAPIKey() {
		cmd.Print("API Key: ")
		apiKey = readPassword()
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM: %w", err)
	}

	cmd.Printf("LLM provider set to %s\n", provider.Description())
	return nil
}

func runSettingsOCR(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	settings.OCR.BaseURL = strings.TrimRight(args[0], "/")
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("OCR endpoint set to %s\n", settings.OCR.BaseURL)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when attached to a terminal
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
