// ABOUTME: CLI command to query indexed policy documents
// ABOUTME: Runs classified retrieval, optionally synthesizing a cited answer
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	queryAnswer bool
	queryLimit  int
)

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Query policy documents",
		Long: `Query indexed policy documents.

The question is classified (general, product-specific, comparison,
procedure) and routed to summary-level or chunk-level search with
metadata pre-filters. Results are ranked by confidence and carry
component-path citations.

Examples:
  policyrag query "What are the VA loan modification requirements for PACE liens?"
  policyrag query "Compare VA and FHA PACE lien requirements"
  policyrag query --answer "How do I submit a partial claim?"
  policyrag query --format json "escrow requirements"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().BoolVar(&queryAnswer, "answer", false, "Synthesize a natural-language answer from the results")
	cmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum results to display (0 uses the retrieval default)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if queryLimit != 0 {
		if err := validatePositiveInt(queryLimit, "limit"); err != nil {
			return err
		}
	}

	svc, err := buildServices(cmd.Context())
	if err != nil {
		return err
	}

	result, err := svc.retriever.Retrieve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	if queryLimit > 0 && len(result.Results) > queryLimit {
		result.Results = result.Results[:queryLimit]
	}

	if len(result.Results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results for query: %s\n", args[0])
		}
		return nil
	}

	if queryAnswer {
		contexts := make([]string, 0, len(result.Results))
		for _, res := range result.Results {
			contexts = append(contexts, res.Content)
		}
		answer, err := svc.llmClient.Answer(cmd.Context(), args[0], contexts)
		if err != nil {
			return fmt.Errorf("answer synthesis failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", answer)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CONF\tSECTION\tPATH\tCONTENT\n")
	fmt.Fprintf(w, "----\t-------\t----\t-------\n")
	for _, res := range result.Results {
		section := string(res.SectionType)
		if section == "" {
			section = "summary"
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			res.Confidence,
			section,
			truncate(res.ComponentPath, 26),
			truncate(res.Content, 60))
	}
	w.Flush()

	if len(result.Groups) > 0 && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nComparison groups:\n")
		for _, group := range result.Groups {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d result(s))\n", group.Key, len(group.Results))
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nStrategy: %s", result.Strategy)
		if result.Degraded {
			fmt.Fprintf(cmd.OutOrStdout(), " (degraded: partial results)")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n")
	}

	return nil
}
