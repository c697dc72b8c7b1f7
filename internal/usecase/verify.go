package usecase

import (
	"context"
	"fmt"
	"log"

	"lawrag/internal/adapter/catalog"
	"lawrag/internal/domain"
	"lawrag/internal/pointid"
	"lawrag/internal/port"
)

// VerifyUseCase checks that the ledger and the vector store agree: every
// identity the ledger claims as embedded must have a matching point. A
// disagreement is a warning, never fatal, and is repairable by
// re-embedding from the catalog because upserts are idempotent.
type VerifyUseCase struct {
	ledger   port.Ledger
	store    port.VectorStore
	embedder port.Embedder
	catalog  *catalog.Catalog
	logger   *log.Logger
}

func NewVerifyUseCase(ledger port.Ledger, store port.VectorStore, embedder port.Embedder, cat *catalog.Catalog, logger *log.Logger) *VerifyUseCase {
	if logger == nil {
		logger = log.Default()
	}
	return &VerifyUseCase{
		ledger:   ledger,
		store:    store,
		embedder: embedder,
		catalog:  cat,
		logger:   logger,
	}
}

// VerifyResult summarizes one verification pass.
type VerifyResult struct {
	LedgerCount  int
	StoreCount   int
	Missing      []string // identities recorded in the ledger but absent from the store
	Repaired     int
	Unrepairable []string // missing identities with no catalog entry to rebuild from
}

const verifyChunk = 256

// Verify scans the full ledger against the store. With repair set,
// missing points are rebuilt from the catalog and upserted.
func (u *VerifyUseCase) Verify(ctx context.Context, repair bool) (*VerifyResult, error) {
	identities := u.ledger.Embedded()
	result := &VerifyResult{LedgerCount: len(identities)}

	storeCount, err := u.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count collection points: %w", err)
	}
	result.StoreCount = storeCount

	for start := 0; start < len(identities); start += verifyChunk {
		end := start + verifyChunk
		if end > len(identities) {
			end = len(identities)
		}
		chunk := identities[start:end]

		ids := make([]string, len(chunk))
		for i, identity := range chunk {
			ids[i] = pointid.FromIdentity(identity)
		}

		found, err := u.store.ExistingIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to look up points: %w", err)
		}

		for i, identity := range chunk {
			if found[ids[i]] {
				continue
			}
			u.logger.Printf("verify: ledger claims %s but the store has no point %s", identity, ids[i])
			result.Missing = append(result.Missing, identity)
		}
	}

	if repair && len(result.Missing) > 0 {
		if err := u.repair(ctx, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (u *VerifyUseCase) repair(ctx context.Context, result *VerifyResult) error {
	if u.catalog == nil {
		result.Unrepairable = result.Missing
		return fmt.Errorf("repair requested but no catalog is available")
	}

	for _, identity := range result.Missing {
		entry, err := u.catalog.Get(identity)
		if err != nil {
			result.Unrepairable = append(result.Unrepairable, identity)
			continue
		}

		vecs, err := u.embedder.Embed([]string{entry.EmbedText})
		if err != nil || len(vecs) == 0 || vecs[0] == nil {
			u.logger.Printf("verify: failed to re-encode %s: %v", identity, err)
			result.Unrepairable = append(result.Unrepairable, identity)
			continue
		}

		point := port.Point{
			ID:     entry.PointID,
			Vector: vecs[0],
			Payload: domain.Payload{
				URL:           entry.Identity,
				Title:         entry.Title,
				Content:       entry.Excerpt,
				ContentLength: entry.ContentLength,
				DocumentType:  entry.DocumentType,
				Status:        entry.Status,
				Date:          entry.Date,
			},
		}
		if err := u.store.Upsert(ctx, []port.Point{point}); err != nil {
			return fmt.Errorf("failed to re-upsert %s: %w", identity, err)
		}
		result.Repaired++
	}
	return nil
}
