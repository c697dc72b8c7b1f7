package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"lawrag/internal/adapter/scanner"
	"lawrag/internal/domain"
	"lawrag/internal/normalize"
	"lawrag/internal/usecase"
)

var (
	ingestPattern string
	ingestLocal   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [root]",
	Short: "Scan dump folders and embed new documents",
	Long: `Scan scrape dump folders under the given root, skip folders and
documents already recorded in the ledgers, and embed the rest into the
vector collection. Interrupted runs resume where they left off.

Examples:
  lawrag ingest ./dumps
  lawrag ingest ./dumps --pattern "traffic_laws_WITH_CONTENT_*"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestPattern, "pattern", "", "dump folder name pattern (default from config)")
	ingestCmd.Flags().BoolVar(&ingestLocal, "local", false, "use the offline hashing encoder instead of the configured model")
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := rootDir
	if len(args) > 0 {
		var err error
		root, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("source root does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source root is not a directory: %s", root)
	}

	cfg := GetConfig()
	pattern := cfg.Ingest.FolderPattern
	if ingestPattern != "" {
		pattern = ingestPattern
	}

	release, err := usecase.AcquireRunLock(cfg.StatePath(runLockFile))
	if err != nil {
		return err
	}
	defer release()

	led, err := openLedger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer led.Close()

	cat, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	embedder, err := newEmbedder(cfg, ingestLocal)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	logFile, err := os.OpenFile(cfg.StatePath(runLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	sc := scanner.New(pattern, cfg.Ingest.DataFile)
	norm := normalize.New(normalize.Limits{
		MinContentLen:   cfg.Ingest.MinContentLen,
		ExcerptMaxLen:   cfg.Ingest.ExcerptMaxLen,
		EmbedTextMaxLen: cfg.Ingest.EmbedTextMaxLen,
		TitleMaxLen:     cfg.Ingest.TitleMaxLen,
	})
	ingestUC := usecase.NewIngestUseCase(
		sc, led, norm, embedder, newStore(cfg), cat,
		cfg.Ingest.BatchSize, cfg.Ingest.EncodeWorkers, logger,
	)

	fmt.Printf("Scanning %s (pattern %q, model %s)...\n", root, pattern, embedder.ModelName())

	var bar *progressbar.ProgressBar
	ingestUC.OnFolder = func(done, total int, folder string) {
		if bar == nil && total > 0 {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		if bar != nil {
			bar.Set(done)
		}
	}

	summary, err := ingestUC.Ingest(cmd.Context(), root)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		color.Red("Ingestion failed: %v", err)
		return err
	}
	return nil
}

func printSummary(s *domain.RunSummary) {
	bold := color.New(color.Bold)
	bold.Println("\nIngestion summary:")
	fmt.Printf("  Folders:   %d seen, %d scanned, %d skipped, %d failed\n",
		s.FoldersSeen, s.FoldersScanned, s.FoldersSkipped, s.FoldersFailed)
	fmt.Printf("  Records:   %d seen\n", s.RecordsSeen)
	color.Green("  Embedded:  %d", s.Embedded)
	fmt.Printf("  Skipped:   %d empty, %d duplicate, %d malformed\n",
		s.SkippedEmpty, s.SkippedDuplicate, s.SkippedMalformed)
	if s.EncodingFailures > 0 {
		color.Yellow("  Encoding failures: %d (will retry next run)", s.EncodingFailures)
	}
	fmt.Printf("  Elapsed:   %s\n", s.Elapsed.Round(time.Second))
}
