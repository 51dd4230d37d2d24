package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var matchJSON bool

var matchCmd = &cobra.Command{
	Use:   "match [text]",
	Short: "Match one problem text against the problem bank",
	Long: `Ranks stored problems against the given problem text. Useful for
checking what a single segment would match without running a full scan.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "output matches as JSON")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matchService == nil {
		return errors.New("match service not configured")
	}

	matches, err := matchService.FindMatches(cmd.Context(), args[0], scope())
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if matchJSON {
		return outputJSON(cmd, matches)
	}

	if len(matches) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	cmd.Printf("%d match(es):\n", len(matches))
	for i := range matches {
		printMatch(cmd, &matches[i], "  ")
	}
	return nil
}
