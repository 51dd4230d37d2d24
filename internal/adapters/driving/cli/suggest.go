package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var suggestJSON bool

var suggestCmd = &cobra.Command{
	Use:   "suggest [text]",
	Short: "Suggest exam metadata for a piece of text",
	Long: `Guesses exam type, subject and category from the given text using
the deterministic keyword rules. No OCR, storage or LLM involved.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output the suggestion as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestService == nil {
		return errors.New("suggestion service not configured")
	}

	suggestion := suggestService.Suggest(args[0])

	if suggestJSON {
		return outputJSON(cmd, suggestion)
	}

	if suggestion.IsEmpty() {
		cmd.Println("No suggestion.")
		return nil
	}

	printSuggestion(cmd, suggestion)
	return nil
}
