// Package cli is the cobra-based driving adapter. It is an ops and debug
// surface for the scan pipeline; the platform's API layer drives the same
// core services through the driving ports.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanprep-labs/scanprep/internal/adapters/driven/ai"
	"github.com/scanprep-labs/scanprep/internal/adapters/driven/config/file"
	"github.com/scanprep-labs/scanprep/internal/adapters/driven/ocr/remote"
	"github.com/scanprep-labs/scanprep/internal/adapters/driven/storage/postgres"
	"github.com/scanprep-labs/scanprep/internal/adapters/driven/storage/sqlite"
	"github.com/scanprep-labs/scanprep/internal/core/domain"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/core/ports/driving"
	"github.com/scanprep-labs/scanprep/internal/core/services"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose  bool
	tenantID string
)

// Services injected into the command tree. Populated lazily by
// ensureServices, or explicitly via SetServices (tests, embedding).
var (
	scanService     driving.ScanService
	matchService    driving.MatchService
	suggestService  driving.SuggestionService
	settingsService driving.SettingsService
	problemRepo     driven.ProblemRepository
)

var rootCmd = &cobra.Command{
	Use:   "scanprep",
	Short: "Scan worksheet photos into matched problems",
	Long: `Scanprep runs the worksheet scan pipeline: OCR, problem segmentation,
candidate matching against the stored problem bank, and exam metadata
suggestion.

Configuration lives in ~/.scanprep/config.toml; prompt templates in
~/.scanprep/prompts/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return ensureServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "local", "tenant the commands operate in")
}

// Services bundles everything the command tree needs.
type Services struct {
	Scan     driving.ScanService
	Match    driving.MatchService
	Suggest  driving.SuggestionService
	Settings driving.SettingsService
	Problems driven.ProblemRepository
}

// SetServices injects pre-built services, bypassing the default wiring.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	scanService = s.Scan
	matchService = s.Match
	suggestService = s.Suggest
	settingsService = s.Settings
	problemRepo = s.Problems
}

// ensureServices wires the default service graph on first use: TOML config,
// a problem repository, the optional LLM and OCR adapters, and the pipeline
// services on top. Missing optional adapters degrade the pipeline rather
// than fail it.
func ensureServices(ctx context.Context) error {
	if scanService != nil {
		return nil
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore)
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	repo, err := openRepository(ctx, configStore)
	if err != nil {
		return err
	}
	problemRepo = repo

	// Optional LLM: without it segmentation and ranking stay on the
	// deterministic strategies.
	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM unavailable, using deterministic fallbacks: %v", err)
		llm = nil
	}

	// Optional OCR: image scanning needs it, text entry points don't.
	var ocrSvc driven.OCRService
	if settings.OCR.IsConfigured() {
		remoteOCR, err := remote.NewOCRService(remote.Config{
			BaseURL:           settings.OCR.BaseURL,
			Timeout:           timeoutSeconds(settings.OCR.TimeoutSeconds),
			RequestsPerSecond: settings.OCR.RequestsPerSecond,
		})
		if err != nil {
			return fmt.Errorf("configuring OCR client: %w", err)
		}
		ocrSvc = remoteOCR
	} else {
		logger.Debug("OCR endpoint not configured; 'scan' on images will fail")
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}
	if err := promptStore.Watch(); err != nil {
		logger.Warn("Prompt hot-reload disabled: %v", err)
	}

	segmenter := services.NewAISegmenter(llm, services.NewSegmenter(), settings.LLM)
	segmenter.SetPromptStore(promptStore)

	matcher := services.NewMatcher(repo, llm, settings.Matcher, settings.LLM)
	matcher.SetPromptStore(promptStore)

	suggester := services.NewSuggester()

	scanService = services.NewScanner(ocrSvc, segmenter, matcher, suggester)
	matchService = matcher
	suggestService = suggester

	return nil
}

// openRepository selects the problem repository backend from configuration.
// Default is the embedded SQLite store; "postgres" targets the platform's
// shared relational store.
func openRepository(ctx context.Context, configStore driven.ConfigStore) (driven.ProblemRepository, error) {
	backend := configStore.GetString("storage.backend")
	switch backend {
	case "", "sqlite":
		store, err := sqlite.NewStore("")
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case "postgres":
		connString := configStore.GetString("storage.postgres_url")
		if connString == "" {
			return nil, fmt.Errorf("storage.backend is postgres but storage.postgres_url is not set")
		}
		store, err := postgres.NewProblemStore(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage.backend %q (want sqlite or postgres)", backend)
	}
}

// scope returns the tenant scope the current invocation operates in.
func scope() domain.TenantScope {
	return domain.TenantScope{TenantID: tenantID}
}

// timeoutSeconds converts a configured timeout to a duration, leaving zero
// for the adapter default.
func timeoutSeconds(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
