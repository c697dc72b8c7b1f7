package usecase

import (
	"context"
	"fmt"

	"lawrag/internal/adapter/catalog"
	"lawrag/internal/adapter/ledger"
	"lawrag/internal/port"
)

// Reset drops the collection, truncates both dedup ledgers and clears the
// catalog as one operation. Clearing the ledgers without dropping the
// collection (or the reverse) breaks the dedup invariant, so partial
// resets are not offered.
func Reset(ctx context.Context, store port.VectorStore, led *ledger.FileLedger, cat *catalog.Catalog) error {
	if err := store.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	if err := led.Truncate(); err != nil {
		return fmt.Errorf("collection dropped but ledger truncation failed, "+
			"remove the ledger files manually before the next run: %w", err)
	}
	if cat != nil {
		if err := cat.Clear(); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	}
	return nil
}
