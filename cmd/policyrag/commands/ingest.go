// ABOUTME: CLI command to ingest policy documents from JSON files
// ABOUTME: Parses document batches and runs them through the ingestion pipeline
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/guidewell/policyrag/internal/models"
)

// ingestInput is the on-disk document shape accepted by the ingest command.
type ingestInput struct {
	RootID        string   `json:"root_id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	ComponentPath string   `json:"component_path"`
	Products      []string `json:"products"`
	ContentType   string   `json:"content_type"`
}

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.json>",
		Short: "Ingest policy documents",
		Long: `Ingest policy documents from a JSON file.

The file holds an array of documents:
  [{"root_id": "x37806", "title": "...", "content": "...",
    "component_path": "x37806_x111544_x111562", "products": ["VA"]}]

Each document is cleaned, classified, chunked, summarized, embedded,
and committed to both vector collections. Re-ingesting a root_id
replaces its previous version.

Examples:
  policyrag ingest documents.json
  policyrag ingest --format json documents.json`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	docs, err := loadDocuments(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents in %s", args[0])
	}

	svc, err := buildServices(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := svc.ingestor.IngestAll(cmd.Context(), docs)
	if err != nil && stats.Documents == 0 {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if outputFormat == "json" {
		jsonData, jsonErr := json.MarshalIndent(stats, "", "  ")
		if jsonErr != nil {
			return fmt.Errorf("marshaling JSON: %w", jsonErr)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "DOCUMENTS\tFAILED\tCHUNKS\tMEAN SIZE\tDURATION\n")
		fmt.Fprintf(w, "%d\t%d\t%d\t%.0f\t%s\n",
			stats.Documents, stats.Failed, stats.Chunks, stats.MeanChunkSize, stats.Duration.Round(time.Millisecond))
		w.Flush()

		if !quiet && len(stats.BySection) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nChunks by section:\n")
			for section, count := range stats.BySection {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %d\n", section, count)
			}
		}
	}

	// Partial batch failures surface after reporting what did commit.
	if err != nil {
		return fmt.Errorf("%d document(s) failed: %w", stats.Failed, err)
	}
	return nil
}

// loadDocuments reads and validates the input file.
func loadDocuments(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var inputs []ingestInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	docs := make([]models.Document, 0, len(inputs))
	for i, in := range inputs {
		if in.RootID == "" {
			return nil, fmt.Errorf("document %d: root_id is required", i)
		}
		componentPath, err := models.ParsePath(in.ComponentPath)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", in.RootID, err)
		}
		docs = append(docs, models.Document{
			RootID:      in.RootID,
			Title:       in.Title,
			Content:     in.Content,
			Path:        componentPath,
			Products:    in.Products,
			ContentType: models.ContentType(in.ContentType),
		})
	}
	return docs, nil
}
