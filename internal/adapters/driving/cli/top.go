package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/core/services"
)

var topK int

var topCmd = &cobra.Command{
	Use:   "top [ranked-file] [qid]",
	Short: "Read the best patterns for a query from ranker output",
	Long: `Scans a ranker output file in order and prints the first k document ids
ranked for the given qid (for example r1 or g3).`,
	Args: cobra.ExactArgs(2),
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntVarP(&topK, "top", "k", services.DefaultTopK, "number of patterns")
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening ranker output: %w", err)
	}
	defer f.Close()

	ids, err := services.ReadTopK(f, args[1], topK)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		cmd.Printf("No rows for %s.\n", args[1])
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}
