package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"lawrag/internal/adapter/catalog"
	"lawrag/internal/adapter/scanner"
	"lawrag/internal/domain"
	"lawrag/internal/normalize"
	"lawrag/internal/pointid"
	"lawrag/internal/port"
)

// IngestUseCase runs the write path: scan dump folders, deduplicate,
// normalize, encode and upsert into the vector collection, keeping the
// ledger and catalog in step. Running it twice over unchanged sources
// leaves the collection unchanged.
type IngestUseCase struct {
	scanner  *scanner.Scanner
	ledger   port.Ledger
	norm     *normalize.Normalizer
	embedder port.Embedder
	store    port.VectorStore
	catalog  *catalog.Catalog // optional audit/repair copy

	batchSize int
	workers   int
	logger    *log.Logger

	// OnFolder, when set, reports per-folder progress.
	OnFolder func(done, total int, folder string)
}

func NewIngestUseCase(
	sc *scanner.Scanner,
	ledger port.Ledger,
	norm *normalize.Normalizer,
	embedder port.Embedder,
	store port.VectorStore,
	cat *catalog.Catalog,
	batchSize, workers int,
	logger *log.Logger,
) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 64
	}
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestUseCase{
		scanner:   sc,
		ledger:    ledger,
		norm:      norm,
		embedder:  embedder,
		store:     store,
		catalog:   cat,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

// Ingest processes every unscanned dump folder under root. Per-item
// problems (empty content, duplicates, malformed records, single-item
// encoding failures) are counted and skipped; an upsert that still fails
// after retries aborts the run so data loss is never silent. Interrupting
// a run is safe: the ledger is only updated after acknowledged writes and
// upserts are idempotent, so a resumed run converges to the same state.
func (u *IngestUseCase) Ingest(ctx context.Context, root string) (*domain.RunSummary, error) {
	start := time.Now()
	summary := &domain.RunSummary{}

	if err := u.store.EnsureCollection(ctx, u.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	folders, err := u.scanner.Folders(root)
	if err != nil {
		return nil, err
	}
	summary.FoldersSeen = len(folders)
	u.logger.Printf("ingest: %d folders found, %d already scanned",
		len(folders), u.countScanned(folders))

	for i, folder := range folders {
		if u.OnFolder != nil {
			u.OnFolder(i, len(folders), folder)
		}

		if u.ledger.IsScanned(folder) {
			summary.FoldersSkipped++
			continue
		}

		encodeFailuresBefore := summary.EncodingFailures
		if err := u.ingestFolder(ctx, root, folder, summary); err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = time.Since(start)
				return summary, err
			}
			// Per-folder read problems are reported, not fatal.
			if isFatal(err) {
				summary.Elapsed = time.Since(start)
				return summary, err
			}
			u.logger.Printf("ingest: folder %s failed: %v", folder, err)
			summary.FoldersFailed++
			continue
		}

		if summary.EncodingFailures > encodeFailuresBefore {
			// Leave the folder unscanned so the items that failed to
			// encode are retried on the next run; the ones that made it
			// in are in the ledger and will be skipped as duplicates.
			u.logger.Printf("ingest: folder %s left unscanned after %d encoding failures",
				folder, summary.EncodingFailures-encodeFailuresBefore)
			summary.FoldersFailed++
			continue
		}

		if err := u.ledger.MarkScanned(folder); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("failed to record scanned folder: %w", err)
		}
		summary.FoldersScanned++
	}

	if u.OnFolder != nil {
		u.OnFolder(len(folders), len(folders), "")
	}
	summary.Elapsed = time.Since(start)
	u.logger.Printf("ingest: done in %s: %d embedded, %d empty, %d duplicate, %d malformed, %d encode failures",
		summary.Elapsed.Round(time.Second), summary.Embedded, summary.SkippedEmpty,
		summary.SkippedDuplicate, summary.SkippedMalformed, summary.EncodingFailures)
	return summary, nil
}

// fatalError marks errors that must abort the whole run.
type fatalError struct{ err error }

func (e fatalError) Error() string { return e.err.Error() }
func (e fatalError) Unwrap() error { return e.err }

func isFatal(err error) bool {
	_, ok := err.(fatalError)
	return ok
}

func (u *IngestUseCase) ingestFolder(ctx context.Context, root, folder string, summary *domain.RunSummary) error {
	records, malformed, err := u.scanner.Load(root, folder)
	if err != nil {
		return err
	}
	summary.RecordsSeen += len(records) + malformed
	summary.SkippedMalformed += malformed

	docs := u.filterRecords(records, summary)
	if len(docs) == 0 {
		return nil
	}

	return u.embedAndWrite(ctx, docs, summary)
}

// filterRecords applies the outcome pipeline: normalize, then drop
// identities already embedded (in the ledger or earlier in this folder).
// First occurrence wins within a folder.
func (u *IngestUseCase) filterRecords(records []domain.RawRecord, summary *domain.RunSummary) []domain.Document {
	var docs []domain.Document
	seen := make(map[string]bool)

	for _, rec := range records {
		doc, outcome := u.norm.Normalize(rec)
		if outcome == domain.Accepted && (seen[doc.Identity] || u.ledger.IsEmbedded(doc.Identity)) {
			outcome = domain.SkipDuplicate
		}

		switch outcome {
		case domain.Accepted:
			seen[doc.Identity] = true
			docs = append(docs, doc)
		case domain.SkipEmpty:
			summary.SkippedEmpty++
		case domain.SkipDuplicate:
			summary.SkippedDuplicate++
		case domain.SkipMalformed:
			summary.SkippedMalformed++
		}
	}
	return docs
}

type encodedBatch struct {
	docs []domain.Document
	vecs [][]float32 // nil when the whole batch failed to encode
}

// embedAndWrite encodes batches on a bounded worker pool and writes them
// as they complete. The order per batch is strict: encode, upsert with
// acknowledgement, then ledger and catalog updates, so the ledger never
// claims a write that did not happen.
func (u *IngestUseCase) embedAndWrite(ctx context.Context, docs []domain.Document, summary *domain.RunSummary) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := splitBatches(docs, u.batchSize)
	encoded := make(chan encodedBatch, u.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	go func() {
		for _, batch := range batches {
			batch := batch
			g.Go(func() error {
				texts := make([]string, len(batch))
				for i, d := range batch {
					texts[i] = d.EmbedText
				}
				vecs, err := u.embedder.Embed(texts)
				if err != nil {
					// A batch that cannot be encoded at all is skipped,
					// not fatal; its identities stay unrecorded and will
					// be retried on the next run.
					u.logger.Printf("ingest: encoding batch of %d failed: %v", len(batch), err)
					vecs = nil
				}
				select {
				case encoded <- encodedBatch{docs: batch, vecs: vecs}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		g.Wait()
		close(encoded)
	}()

	var writeErr error
	for eb := range encoded {
		if writeErr != nil {
			continue // drain remaining batches after a fatal write error
		}
		if err := u.writeBatch(ctx, eb, summary); err != nil {
			writeErr = err
			cancel()
		}
	}
	if writeErr != nil {
		return fatalError{writeErr}
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func (u *IngestUseCase) writeBatch(ctx context.Context, eb encodedBatch, summary *domain.RunSummary) error {
	if eb.vecs == nil {
		summary.EncodingFailures += len(eb.docs)
		return nil
	}

	var points []port.Point
	var written []domain.Document
	for i, doc := range eb.docs {
		if i >= len(eb.vecs) || eb.vecs[i] == nil {
			summary.EncodingFailures++
			continue
		}
		points = append(points, port.Point{
			ID:     pointid.FromIdentity(doc.Identity),
			Vector: eb.vecs[i],
			Payload: domain.Payload{
				URL:           doc.Identity,
				Title:         doc.Title,
				Content:       doc.Excerpt,
				ContentLength: doc.ContentLength,
				DocumentType:  doc.DocumentType,
				Status:        doc.Status,
				Date:          doc.Date,
			},
		})
		written = append(written, doc)
	}
	if len(points) == 0 {
		return nil
	}

	if err := u.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("batch upsert failed: %w", err)
	}

	// Only after the store acknowledged the batch.
	now := time.Now()
	for i, doc := range written {
		err := u.ledger.MarkEmbedded(domain.LedgerEntry{
			URL:           doc.Identity,
			Title:         doc.Title,
			ContentLength: doc.ContentLength,
			EmbeddedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("failed to record embedded identity: %w", err)
		}
		if u.catalog != nil {
			err := u.catalog.Put(catalog.Entry{
				Identity:      doc.Identity,
				PointID:       points[i].ID,
				Title:         doc.Title,
				EmbedText:     doc.EmbedText,
				Excerpt:       doc.Excerpt,
				ContentLength: doc.ContentLength,
				DocumentType:  doc.DocumentType,
				Status:        doc.Status,
				Date:          doc.Date,
				Model:         u.embedder.ModelName(),
				EmbeddedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("failed to catalog document: %w", err)
			}
		}
		summary.Embedded++
	}
	return nil
}

func (u *IngestUseCase) countScanned(folders []string) int {
	n := 0
	for _, f := range folders {
		if u.ledger.IsScanned(f) {
			n++
		}
	}
	return n
}

func splitBatches(docs []domain.Document, size int) [][]domain.Document {
	var batches [][]domain.Document
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}
