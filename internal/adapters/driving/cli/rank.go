package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

var (
	rankFile  string
	rankTopK  int
	rankJSON  bool
	rankGroup bool
	keepFiles bool
)

var rankCmd = &cobra.Command{
	Use:   "rank [requirement...]",
	Short: "Recommend patterns for requirements",
	Long: `Builds features for the requirements, runs the trained ranking model over
them and prints the best patterns for each requirement.

Requires Java and the RankLib jar configured under ranker.*.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVarP(&rankFile, "file", "f", "", "read requirements from a file, one per line (- for stdin)")
	rankCmd.Flags().IntVarP(&rankTopK, "top", "k", 0, "patterns per requirement (default recommend.top_k)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "output recommendations as JSON")
	rankCmd.Flags().BoolVar(&rankGroup, "group", false, "requirements come from grouped stories (qid prefix g)")
	rankCmd.Flags().BoolVar(&keepFiles, "keep-files", false, "keep the feature and ranker output files")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	texts, err := readRequirements(cmd, args, rankFile)
	if err != nil {
		return err
	}
	return recommend(cmd, texts, queryKind(rankGroup), rankTopK, rankJSON)
}

// recommend ranks texts and prints the recommendations.
func recommend(cmd *cobra.Command, texts []string, kind domain.QueryKind, topK int, asJSON bool) error {
	queries, err := domain.NewQueryBatch(texts, nil, kind)
	if err != nil {
		return err
	}
	if err := initEngine(cmd.Context()); err != nil {
		return err
	}
	if recommendService == nil {
		return errors.New("recommend service not configured")
	}
	if topK <= 0 && rt.settings != nil {
		topK = rt.settings.Ranker.TopK
	}

	recs, err := recommendService.Recommend(cmd.Context(), queries, topK)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	if asJSON {
		return outputRecommendationsJSON(cmd, queries, recs)
	}
	outputRecommendations(cmd, queries, recs)
	return nil
}

type recommendationJSON struct {
	QID         string                 `json:"qid"`
	Requirement string                 `json:"requirement"`
	Patterns    []domain.PatternRecord `json:"patterns"`
	DocIDs      []string               `json:"doc_ids"`
}

func requirementTexts(queries []domain.Query) map[string]string {
	texts := make(map[string]string, len(queries))
	for _, q := range queries {
		texts[q.QID()] = q.Text
	}
	return texts
}

func outputRecommendationsJSON(cmd *cobra.Command, queries []domain.Query, recs []domain.Recommendation) error {
	texts := requirementTexts(queries)
	out := make([]recommendationJSON, len(recs))
	for i, rec := range recs {
		out[i] = recommendationJSON{
			QID:         rec.QID,
			Requirement: texts[rec.QID],
			Patterns:    rec.Patterns,
			DocIDs:      rec.DocIDs,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRecommendations(cmd *cobra.Command, queries []domain.Query, recs []domain.Recommendation) {
	texts := requirementTexts(queries)
	for _, rec := range recs {
		cmd.Printf("[%s] %s\n", rec.QID, texts[rec.QID])
		if len(rec.Patterns) == 0 {
			cmd.Println("  No patterns ranked.")
		}
		for i, p := range rec.Patterns {
			cmd.Printf("  %d. %s (%s)\n", i+1, p.HumanizedName(), p.Filename)
			if p.Excerpt != "" {
				cmd.Printf("     %s\n", truncate(p.Excerpt, 100))
			}
		}
		cmd.Println()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
