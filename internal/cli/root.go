package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lawrag/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "lawrag",
	Short: "Deduplicating ingestion and semantic retrieval for a legal document corpus",
	Long: `lawrag ingests overlapping scrape dumps of legal documents, embeds each
unique document exactly once into a Qdrant collection, and serves top-k
semantic retrieval over it.

Example usage:
  lawrag ingest ./dumps              # scan dump folders and embed new documents
  lawrag query -q "Giấy phép lái xe" # search the collection
  lawrag verify --repair             # reconcile ledger and collection`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// Optional .env for API keys; absence is fine.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// State lives next to the corpus, not wherever the tool is run.
		if !filepath.IsAbs(cfg.Ingest.StateDir) {
			cfg.Ingest.StateDir = filepath.Join(rootDir, cfg.Ingest.StateDir)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./lawrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}
