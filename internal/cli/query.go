package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lawrag/internal/adapter/cache"
	"lawrag/internal/adapter/retriever"
	"lawrag/internal/domain"
	"lawrag/internal/usecase"
)

var (
	queryText   string
	queryTopK   int
	queryMinLen int
	queryJSON   bool
	queryLocal  bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the indexed corpus",
	Long: `Encode the query with the same model used at ingestion and return the
top-k most similar documents, filtered by a minimum stored content length.

Examples:
  lawrag query -q "Giấy phép lái xe"
  lawrag query -q "mức phạt nồng độ cồn" -k 3 --min-content-length 100 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().IntVar(&queryMinLen, "min-content-length", -1, "minimum stored content length (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryLocal, "local", false, "use the offline hashing encoder instead of the configured model")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	embedder, err := newEmbedder(cfg, queryLocal)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	sem := retriever.NewSemanticRetriever(newStore(cfg), embedder)
	qc := cache.NewQueryCache(cfg.Retrieve.CacheSize, time.Duration(cfg.Retrieve.CacheTTLSec)*time.Second)
	retrieveUC := usecase.NewRetrieveUseCase(sem, qc, cfg.Retrieve.TopK, cfg.Retrieve.MinContentLen)

	results, err := retrieveUC.Retrieve(cmd.Context(), queryText, queryTopK, queryMinLen)
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return fmt.Errorf("retrieval unavailable, is Qdrant running at %s? %w", cfg.Qdrant.URL, err)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		color.Cyan("--- [%d] score %.4f ---", i+1, r.Score)
		fmt.Printf("%s\n%s\n", r.Payload.Title, r.Payload.URL)
		text := r.Payload.Content
		if runes := []rune(text); len(runes) > 500 {
			text = string(runes[:500]) + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}
	return nil
}
