package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lawrag/internal/usecase"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the collection and clear all dedup state",
	Long: `Drop the vector collection, truncate both ledgers and clear the catalog
in one step. The ledgers and the collection must always be reset together;
clearing one without the other breaks deduplication. Requires --yes.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return fmt.Errorf("reset is destructive; re-run with --yes to confirm")
	}

	cfg := GetConfig()

	// The reset must not race a running ingestion.
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

	if err := usecase.Reset(cmd.Context(), newStore(cfg), led, cat); err != nil {
		return err
	}

	color.Green("Collection %q dropped; ledgers and catalog cleared.", cfg.Qdrant.Collection)
	return nil
}
