package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

var (
	featuresFile   string
	featuresOutput string
	featuresGroup  bool
)

var featuresCmd = &cobra.Command{
	Use:   "features [requirement...]",
	Short: "Write learning-to-rank features for requirements",
	Long: `Builds one feature row per (requirement, pattern) pair and writes them in
the ranker's text format:

  <label> qid:<qid> 1:<f1> ... 26:<f26> #docid=<pattern>.md

Requirements are taken from the arguments, or one per line from --file.`,
	RunE: runFeatures,
}

func init() {
	featuresCmd.Flags().StringVarP(&featuresFile, "file", "f", "", "read requirements from a file, one per line (- for stdin)")
	featuresCmd.Flags().StringVarP(&featuresOutput, "output", "o", "", "write features to a file instead of stdout")
	featuresCmd.Flags().BoolVar(&featuresGroup, "group", false, "requirements come from grouped stories (qid prefix g)")
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	texts, err := readRequirements(cmd, args, featuresFile)
	if err != nil {
		return err
	}
	queries, err := domain.NewQueryBatch(texts, nil, queryKind(featuresGroup))
	if err != nil {
		return err
	}

	if err := initEngine(cmd.Context()); err != nil {
		return err
	}
	if featureService == nil {
		return errors.New("feature service not configured")
	}

	var w io.Writer = cmd.OutOrStdout()
	if featuresOutput != "" {
		f, err := os.Create(featuresOutput)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	n, err := featureService.Write(cmd.Context(), w, queries)
	if err != nil {
		return fmt.Errorf("building features: %w", err)
	}
	if featuresOutput != "" {
		cmd.Printf("Wrote %d rows for %d requirements to %s\n", n, len(queries), featuresOutput)
	}
	return nil
}
