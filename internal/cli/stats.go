package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lawrag/internal/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger, catalog and collection counts",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	led, err := openLedger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer led.Close()
	scanned, embedded := led.Counts()

	cat, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()
	cataloged, err := cat.Count()
	if err != nil {
		return err
	}

	fmt.Printf("Scanned folders:    %d\n", scanned)
	fmt.Printf("Embedded identities: %d\n", embedded)
	fmt.Printf("Cataloged documents: %d\n", cataloged)

	count, err := newStore(cfg).Count(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			fmt.Printf("Collection points:   unavailable (%v)\n", err)
			return nil
		}
		return err
	}
	fmt.Printf("Collection points:   %d (%s)\n", count, cfg.Qdrant.Collection)
	return nil
}
