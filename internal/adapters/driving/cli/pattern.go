package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Browse the pattern corpus",
}

var patternJSON bool

var patternShowCmd = &cobra.Command{
	Use:   "show [pattern-id]",
	Short: "Show a pattern's description",
	Long: `Shows a pattern by slug (data-minimization), file name
(data-minimization.md), document id or title.`,
	Args: cobra.ExactArgs(1),
	RunE: runPatternShow,
}

var patternListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the patterns in corpus order",
	RunE:  runPatternList,
}

func init() {
	patternShowCmd.Flags().BoolVar(&patternJSON, "json", false, "output the corpus record as JSON")
	patternCmd.AddCommand(patternShowCmd)
	patternCmd.AddCommand(patternListCmd)
	rootCmd.AddCommand(patternCmd)
}

func runPatternShow(cmd *cobra.Command, args []string) error {
	if err := initPatterns(cmd.Context()); err != nil {
		return err
	}
	if patternService == nil {
		return errors.New("pattern service not configured")
	}

	record, err := patternService.Get(args[0])
	if err != nil {
		return fmt.Errorf("pattern %q: %w", args[0], err)
	}

	if patternJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal pattern: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	title := record.Title
	if title == "" {
		title = record.HumanizedName()
	}
	cmd.Println(title)
	cmd.Printf("File: %s\n", record.Filename)
	if record.Type != "" {
		cmd.Printf("Type: %s\n", record.Type)
	}
	if len(record.Categories) > 0 {
		cmd.Printf("Categories: %v\n", record.Categories)
	}
	cmd.Println()
	if record.Excerpt != "" {
		cmd.Println(record.Excerpt)
		cmd.Println()
	}
	for _, h := range record.Headings {
		cmd.Printf("## %s\n%s\n\n", h.Title, h.Content)
	}
	return nil
}

func runPatternList(cmd *cobra.Command, _ []string) error {
	if err := initPatterns(cmd.Context()); err != nil {
		return err
	}
	if patternService == nil {
		return errors.New("pattern service not configured")
	}

	patterns := patternService.List()
	if len(patterns) == 0 {
		cmd.Println("No patterns.")
		return nil
	}
	for i, p := range patterns {
		cmd.Printf("  [%d] %s (%s)\n", i+1, p.Title, p.ID)
	}
	return nil
}
