package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanprep-labs/scanprep/internal/core/domain"
)

var (
	problemTitle    string
	problemSubject  string
	problemCategory string
	problemLimit    int
	problemJSON     bool
)

var problemCmd = &cobra.Command{
	Use:   "problem",
	Short: "Manage the local problem bank",
	Long: `Seed and inspect stored problems. The platform's scraper is the
real writer; these commands exist for local testing and small corrections.`,
}

var problemAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a problem to the bank",
	Args:  cobra.ExactArgs(1),
	RunE:  runProblemAdd,
}

var problemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored problems, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runProblemList,
}

func init() {
	problemAddCmd.Flags().StringVar(&problemTitle, "title", "", "problem title")
	problemAddCmd.Flags().StringVar(&problemSubject, "subject", "", "subject, e.g. Mathematics")
	problemAddCmd.Flags().StringVar(&problemCategory, "category", "", "category, e.g. Algebra")
	problemListCmd.Flags().IntVarP(&problemLimit, "limit", "n", 20, "maximum number of problems")
	problemListCmd.Flags().BoolVar(&problemJSON, "json", false, "output problems as JSON")

	problemCmd.AddCommand(problemAddCmd)
	problemCmd.AddCommand(problemListCmd)
	rootCmd.AddCommand(problemCmd)
}

func runProblemAdd(cmd *cobra.Command, args []string) error {
	if problemRepo == nil {
		return errors.New("problem repository not configured")
	}

	problem := domain.Problem{
		TenantID: tenantID,
		Title:    problemTitle,
		Content:  args[0],
		Subject:  problemSubject,
		Category: problemCategory,
	}

	if err := problemRepo.Save(cmd.Context(), &problem); err != nil {
		return fmt.Errorf("saving problem: %w", err)
	}

	cmd.Printf("Added problem %s\n", problem.ID)
	return nil
}

func runProblemList(cmd *cobra.Command, _ []string) error {
	if problemRepo == nil {
		return errors.New("problem repository not configured")
	}

	problems, err := problemRepo.List(cmd.Context(), scope(), problemLimit)
	if err != nil {
		return fmt.Errorf("listing problems: %w", err)
	}

	if problemJSON {
		return outputJSON(cmd, problems)
	}

	if len(problems) == 0 {
		cmd.Println("No problems stored.")
		return nil
	}

	for i := range problems {
		p := &problems[i]
		title := p.Title
		if title == "" {
			title = excerptContent(p.Content)
		}
		cmd.Printf("  %s  %s", p.ID, title)
		if p.Subject != "" {
			cmd.Printf("  [%s", p.Subject)
			if p.Category != "" {
				cmd.Printf("/%s", p.Category)
			}
			cmd.Print("]")
		}
		cmd.Println()
	}
	return nil
}

// excerptContent shortens problem content for one-line listings.
func excerptContent(content string) string {
	const maxLen = 60
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "..."
}
