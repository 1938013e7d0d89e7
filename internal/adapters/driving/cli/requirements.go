package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Generate privacy requirements",
}

var (
	reqRole       string
	reqProcessing string
	reqData       string
	reqJSON       bool
	reqRank       bool
	reqTopK       int
)

var requirementsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate requirements for a data flow",
	Long: `Generates one privacy requirement per requirement type (unlinkability,
anonymity, transparency and others) for a (role, processing, personal data)
data flow. With --rank the requirements are ranked against the corpus.

Example:
  ppltr requirements generate --role advertiser --processing collects --data "location history"`,
	RunE: runRequirementsGenerate,
}

func init() {
	requirementsGenerateCmd.Flags().StringVar(&reqRole, "role", "", "external entity acting on the data")
	requirementsGenerateCmd.Flags().StringVar(&reqProcessing, "processing", "", "processing applied to the data")
	requirementsGenerateCmd.Flags().StringVar(&reqData, "data", "", "personal data concerned")
	requirementsGenerateCmd.Flags().BoolVar(&reqJSON, "json", false, "output as JSON")
	requirementsGenerateCmd.Flags().BoolVar(&reqRank, "rank", false, "recommend patterns for each requirement")
	requirementsGenerateCmd.Flags().IntVarP(&reqTopK, "top", "k", 0, "patterns per requirement with --rank")
	requirementsCmd.AddCommand(requirementsGenerateCmd)
	rootCmd.AddCommand(requirementsCmd)
}

func runRequirementsGenerate(cmd *cobra.Command, _ []string) error {
	initRequirements()
	if requirementService == nil {
		return errors.New("requirement service not configured")
	}

	reqs, err := requirementService.Generate(domain.DataFlowTriple{
		Role:         reqRole,
		Processing:   reqProcessing,
		PersonalData: reqData,
	})
	if err != nil {
		return err
	}

	if reqRank {
		texts := make([]string, len(reqs))
		for i, r := range reqs {
			texts[i] = r.Text
		}
		return recommend(cmd, texts, domain.QueryKindIndividual, reqTopK, reqJSON)
	}

	if reqJSON {
		type requirementJSON struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		out := make([]requirementJSON, len(reqs))
		for i, r := range reqs {
			out[i] = requirementJSON{Type: string(r.Type), Text: r.Text}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal requirements: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, r := range reqs {
		cmd.Printf("%-22s %s\n", r.Type, r.Text)
	}
	return nil
}
