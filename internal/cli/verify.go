package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lawrag/internal/usecase"
)

var verifyRepair bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the ledger and the collection agree",
	Long: `Check every identity the embedded-documents ledger records against the
collection. Missing points are reported as warnings; with --repair they
are re-embedded from the local catalog, which is always safe because
upserts are idempotent.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVar(&verifyRepair, "repair", false, "re-embed missing points from the catalog")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

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

	embedder, err := newEmbedder(cfg, false)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	verifyUC := usecase.NewVerifyUseCase(led, newStore(cfg), embedder, cat, log.New(os.Stderr, "", log.LstdFlags))

	result, err := verifyUC.Verify(cmd.Context(), verifyRepair)
	if err != nil {
		return err
	}

	fmt.Printf("Ledger identities: %d\n", result.LedgerCount)
	fmt.Printf("Collection points: %d\n", result.StoreCount)
	if len(result.Missing) == 0 {
		color.Green("Ledger and collection agree.")
		return nil
	}

	color.Yellow("%d identities recorded in the ledger have no point in the collection.", len(result.Missing))
	if verifyRepair {
		color.Green("Repaired: %d", result.Repaired)
		if len(result.Unrepairable) > 0 {
			color.Red("Unrepairable (no catalog entry): %d", len(result.Unrepairable))
		}
	} else {
		fmt.Println("Run again with --repair to re-embed them from the catalog.")
	}
	return nil
}
